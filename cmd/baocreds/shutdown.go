package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/baocreds/internal/config"
	"github.com/vyrodovalexey/baocreds/internal/observability"
)

// run serves until SIGINT or SIGTERM, then shuts down gracefully.
func run(ctx context.Context, app *application, configPath string, watch bool, logger observability.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var watcher *config.Watcher
	if watch {
		watcher = startConfigWatcher(ctx, app, configPath, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- app.server.Start(ctx) }()

	select {
	case err := <-errCh:
		shutdown(app, watcher, logger)
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdown(app, watcher, logger)
	return <-errCh
}

// startConfigWatcher reloads the configuration file on change.
func startConfigWatcher(
	ctx context.Context,
	app *application,
	configPath string,
	logger observability.Logger,
) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		app.applyReload(newCfg, logger)
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		return nil
	}
	return watcher
}

// shutdown stops every component within the configured shutdown timeout.
func shutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("baocreds stopped")
}
