package data

import (
	"context"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
	"github.com/lifestream-app/lifestream/internal/infra/openai"
)

// generatorRepo implements the text generator over an OpenAI-compatible API
type generatorRepo struct {
	client *openai.Client
}

// NewGeneratorRepo creates a text generator; it returns nil when client is nil
// so the composer always uses templates
func NewGeneratorRepo(client *openai.Client) repo.TextGenerator {
	if client == nil {
		return nil
	}
	return &generatorRepo{client: client}
}

// Generate runs a single completion
func (r *generatorRepo) Generate(ctx context.Context, prompt string, opts repo.GenerateOptions) (string, error) {
	return r.client.Complete(ctx, prompt, opts.Temperature, opts.MaxTokens)
}
