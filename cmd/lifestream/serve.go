package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifestream-app/lifestream/internal/api"
	"github.com/lifestream-app/lifestream/internal/logging"
	"github.com/lifestream-app/lifestream/internal/server"
	"github.com/lifestream-app/lifestream/internal/service"
)

func newServeCmd() *cobra.Command {
	var port int
	var noFeishu bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Feishu bot and the daily scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, !noFeishu)
			if err != nil {
				return err
			}
			defer a.close()

			if port == 0 {
				port = a.cfg.API.Port
			}
			return serve(ctx, a, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP API port (default from API_PORT)")
	cmd.Flags().BoolVar(&noFeishu, "no-feishu", false, "Do not connect to Feishu even when credentials are set")
	return cmd
}

func serve(ctx context.Context, a *app, port int) error {
	log := logging.For("Serve")

	scheduler, err := service.NewDailyScheduler(a.svc)
	if err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.WithError(err).Warn("Scheduler shutdown failed")
		}
	}()
	log.WithField("next", scheduler.NextRun().Format(time.RFC3339)).Info("Daily rollover scheduled")

	apiServer := api.NewServer(a.svc, port)
	errCh := make(chan error, 2)
	go func() {
		errCh <- apiServer.Start()
	}()
	log.WithField("port", apiServer.GetPort()).Info("HTTP API listening on 127.0.0.1")

	if a.feishu != nil {
		feishuServer := server.NewFeishuServer(a.feishu, a.repos.Message, a.svc)
		go func() {
			errCh <- feishuServer.Start(ctx)
		}()
		log.Info("Feishu bot enabled")
	} else {
		log.Info("Feishu bot disabled")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case runErr = <-errCh:
		if runErr != nil {
			log.WithError(runErr).Error("Server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP API shutdown failed")
	}
	return runErr
}
