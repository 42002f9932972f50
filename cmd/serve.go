package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"imgclass/internal/api"
	"imgclass/internal/api/handler/v1handler"
	"imgclass/internal/config"
	"imgclass/internal/runs"
	"imgclass/internal/train"
	"imgclass/internal/worker"
	"imgclass/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// loadModel loads the prediction artifact if one exists at the configured
// path. The predict endpoint answers 503 until a model is available, the
// run endpoints do not need one.
func loadModel(ctx context.Context, cfg *config.Config) *train.Artifact {
	model, err := train.LoadArtifact(cfg.Model.Path)
	if err != nil {
		logger.Warn(ctx, "could not load model artifact, predictions disabled",
			zap.String("path", cfg.Model.Path), zap.Error(err))

		return nil
	}

	logger.Info(ctx, "model artifact loaded",
		zap.String("path", cfg.Model.Path),
		zap.Strings("labels", model.Labels))

	return model
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and training-run workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			engine := train.NewEngine(train.NewOptions(cfg))
			service := runs.New(strg, engine, runs.NewOptions(cfg))

			queue, err := worker.Start(ctx, strg.Pool, service, cfg.Runs.QueueMaxWorkers)
			if err != nil {
				logger.Fatal(ctx, "could not start job queue", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{Deps: v1handler.Deps{
				Runs:        service,
				Model:       loadModel(ctx, cfg),
				DefaultSpec: train.SpecFromConfig(cfg),
			}})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping job queue...")
			if err := queue.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop job queue", zap.Error(err))
			}
		},
	}

	return cmd
}
