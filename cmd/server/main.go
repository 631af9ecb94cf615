package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/gamematch/internal/api"
	"github.com/mcoot/gamematch/internal/config"
	"github.com/mcoot/gamematch/internal/factory"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	app, err := factory.New(cfg.FactoryConfig(logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	logger.Info("application ready", slog.String("storage", cfg.StorageType))

	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		PlayerService:       app.PlayerService,
		MatchService:        app.MatchService,
		LifecycleController: app.LifecycleController,
		HistoryService:      app.HistoryService,
	})
	server := api.NewServer(router, cfg.ServerConfig(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
