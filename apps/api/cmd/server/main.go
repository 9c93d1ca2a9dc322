package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"unitranslate/packages/backend/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	logger := logging.MustNew(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	if err != nil {
		logger.Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg config, logger *zap.SugaredLogger) error {
	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Errorw("failed to close backend", "error", err)
		}
	}()

	relays := newEventRelays()
	server := &http.Server{
		Addr: cfg.Addr,
		Handler: newRouter(b, routerConfig{
			RateLimit:   cfg.RateLimit,
			CORSOrigins: cfg.CORSOrigins,
			Relays:      relays,
		}, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "addr", cfg.Addr, "engine", cfg.Engine)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Relays run on hijacked connections; close them before Redis goes away.
	if err := relays.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("session event relays did not close in time", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
		if closeErr := server.Close(); closeErr != nil {
			logger.Errorw("forced close failed", "error", closeErr)
		}
	}
	return nil
}
