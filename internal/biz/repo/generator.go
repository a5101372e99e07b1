package repo

import "context"

// GenerateOptions tunes a single generation call
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// TextGenerator is the hosted text-generation interface
type TextGenerator interface {
	// Generate returns a completion for prompt
	// Any error means the caller must fall back to a local response
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
