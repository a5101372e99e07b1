package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/conf"
	"github.com/lifestream-app/lifestream/internal/data"
	"github.com/lifestream-app/lifestream/internal/infra/feishu"
	"github.com/lifestream-app/lifestream/internal/infra/openai"
	"github.com/lifestream-app/lifestream/internal/logging"
	"github.com/lifestream-app/lifestream/internal/service"
)

// app holds the wired layers shared by every command
type app struct {
	cfg    *conf.Config
	repos  *data.Repositories
	feishu *feishu.Client
	svc    *service.LifeStreamService
}

// bootstrap loads config, opens the store and restores state.
// withFeishu creates the Feishu client when credentials are configured.
func bootstrap(ctx context.Context, withFeishu bool) (*app, error) {
	cfg := conf.LoadFromEnv()
	if cfg.Debug {
		cfg.Log.Level = "debug"
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log := logging.For("Bootstrap")

	var generator *openai.Client
	if cfg.GeneratorEnabled() {
		generator = openai.NewClient(cfg.Generator.APIKey, cfg.Generator.BaseURL, cfg.Generator.Model)
		log.WithField("model", generator.Model()).Info("Hosted reply generation enabled")
	}

	var feishuClient *feishu.Client
	if withFeishu && cfg.FeishuEnabled() {
		feishuClient = feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
	}

	repos, err := data.NewRepositories(ctx, cfg.ToStoreOptions(), generator, feishuClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	log.WithField("backend", cfg.Store.Backend).WithField("path", cfg.Store.Path).Debug("State store opened")

	tuning := cfg.Tuning
	composerCfg := tuning.ToComposerConfig()
	if cfg.Generator.Timeout > 0 {
		composerCfg.Timeout = cfg.Generator.Timeout
	}

	var limiter *rate.Limiter
	if n := cfg.Generator.RatePerMinute; n > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}

	uc := usecase.NewLifeStreamUsecase(
		repos.State,
		usecase.NewExtractionPipeline(tuning.ToExtractionConfig()),
		usecase.NewResponseComposer(repos.Generator, limiter, composerCfg),
		usecase.NewDispatcher(),
		tuning.ToScoringConfig(),
		usecase.SystemClock{},
		tuning.UserName,
	)

	svc := service.NewLifeStreamService(uc, service.NewMetrics(), tuning.DebounceWindow(), tuning.Retention.Days)
	svc.Load(ctx)

	return &app{cfg: cfg, repos: repos, feishu: feishuClient, svc: svc}, nil
}

// close flushes pending state and releases the store
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logging.For("Bootstrap")
	if err := a.svc.Close(ctx); err != nil {
		log.WithError(err).Error("Final save failed")
	}
	if err := a.repos.Close(); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
}
