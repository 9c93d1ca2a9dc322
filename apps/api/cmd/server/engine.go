package main

import (
	"context"
	"fmt"
	"strings"

	rediscache "unitranslate/packages/backend/redis"
	"unitranslate/packages/backend/status"
	"unitranslate/packages/backend/translation"

	"go.uber.org/zap"
)

// backend bundles what the handlers are served from.
type backend struct {
	api     translation.API
	health  func() translation.HealthStatus
	events  StatusSubscriber
	closers []func() error
}

func (b *backend) Close() error {
	var firstErr error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newTranslator(cfg config) (translation.Translator, error) {
	switch strings.ToLower(cfg.Engine) {
	case engineOpenAI:
		return translation.NewOpenAITranslator(translation.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	default:
		return translation.NewStubTranslator(nil), nil
	}
}

// newBackend builds the translation service and, when Redis is configured,
// the response cache and the session event relay.
func newBackend(ctx context.Context, cfg config, logger *zap.SugaredLogger) (*backend, error) {
	translator, err := newTranslator(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s engine: %w", cfg.Engine, err)
	}

	service := translation.NewService(translator, logger)
	b := &backend{api: service, health: service.Health}

	if cfg.RedisAddr == "" {
		logger.Infow("redis not configured, cache and session events disabled")
		return b, nil
	}

	client, err := rediscache.NewClient(cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, client.Close)

	if err := rediscache.Ping(ctx, client); err != nil {
		logger.Warnw("redis unreachable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
		_ = b.Close()
		b.closers = nil
		return b, nil
	}

	b.api = translation.WithCache(service, rediscache.NewTranslationCache(client, cfg.CacheTTL), logger)
	b.events = status.NewRedisStatusSubscriber(client)
	logger.Infow("redis connected", "addr", cfg.RedisAddr, "cacheTTL", cfg.CacheTTL)
	return b, nil
}

var _ StatusSubscriber = (*status.RedisStatusSubscriber)(nil)
