// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Init sets the level ("debug", "info", "warn", "error") and format ("json" or "text")
func Init(level, format string) {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetOutput(os.Stderr)
}

// SetOutput redirects log output, e.g. to io.Discard in tests or away from stdout for MCP stdio
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// For returns an entry tagged with a component name
func For(component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// Logger returns the underlying logger
func Logger() *logrus.Logger {
	return logger
}
