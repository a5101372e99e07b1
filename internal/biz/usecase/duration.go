package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	numberPattern = `(\d+(?:\.\d+)?)`
	unitPattern   = `(min|minute|minutes|hour|hours|hr|hrs)`
)

// DurationExtractor finds a duration near a keyword and normalizes it to minutes
type DurationExtractor struct {
	mu       sync.RWMutex
	patterns map[string][2]*regexp.Regexp
}

// NewDurationExtractor creates an extractor with patterns precompiled for keywords
func NewDurationExtractor(keywords []string) *DurationExtractor {
	e := &DurationExtractor{patterns: make(map[string][2]*regexp.Regexp, len(keywords))}
	for _, kw := range keywords {
		e.patternsFor(kw)
	}
	return e
}

// Extract returns the duration in minutes and whether one was found.
// "<keyword> ... N unit" is tried before "N unit ... <keyword>".
func (e *DurationExtractor) Extract(text, keyword string) (int, bool) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" || text == "" {
		return 0, false
	}

	for _, re := range e.patternsFor(keyword) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[2])
		if strings.Contains(unit, "hour") || strings.Contains(unit, "hr") {
			value *= 60
		}
		return int(math.Round(value)), true
	}
	return 0, false
}

func (e *DurationExtractor) patternsFor(keyword string) [2]*regexp.Regexp {
	e.mu.RLock()
	p, ok := e.patterns[keyword]
	e.mu.RUnlock()
	if ok {
		return p
	}

	quoted := regexp.QuoteMeta(keyword)
	p = [2]*regexp.Regexp{
		regexp.MustCompile(`(?i)` + quoted + `[\s\w]*?` + numberPattern + `\s*` + unitPattern),
		regexp.MustCompile(`(?i)` + numberPattern + `\s*` + unitPattern + `[\s\w]*?` + quoted),
	}

	e.mu.Lock()
	e.patterns[keyword] = p
	e.mu.Unlock()
	return p
}
