package data

import (
	"context"
	"fmt"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
	"github.com/lifestream-app/lifestream/internal/infra/feishu"
	"github.com/lifestream-app/lifestream/internal/infra/openai"
)

// Store backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// StoreOptions selects and configures the state store
type StoreOptions struct {
	Backend       string
	Path          string // SQLite file or file-store directory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Repositories contains all repositories
type Repositories struct {
	State     repo.StateRepo
	Generator repo.TextGenerator // nil when no API key is configured
	Message   repo.MessageRepo   // nil when Feishu is disabled
}

// NewRepositories creates all repositories.
// openaiClient and feishuClient may be nil.
func NewRepositories(
	ctx context.Context,
	store StoreOptions,
	openaiClient *openai.Client,
	feishuClient *feishu.Client,
) (*Repositories, error) {
	stateRepo, err := NewStateRepo(ctx, store)
	if err != nil {
		return nil, err
	}

	repos := &Repositories{
		State:     stateRepo,
		Generator: NewGeneratorRepo(openaiClient),
	}
	if feishuClient != nil {
		repos.Message = NewFeishuRepo(feishuClient)
	}
	return repos, nil
}

// NewStateRepo opens the configured state store
func NewStateRepo(ctx context.Context, opts StoreOptions) (repo.StateRepo, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return NewSQLiteStateRepo(opts.Path)
	case BackendFile:
		return NewFileStateRepo(opts.Path)
	case BackendRedis:
		return NewRedisStateRepo(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// Close releases the state store
func (r *Repositories) Close() error {
	if r.State == nil {
		return nil
	}
	return r.State.Close()
}
