package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"unitranslate/packages/backend/language"

	"go.uber.org/zap"
)

// Cache stores translation responses.
type Cache interface {
	Get(ctx context.Context, key string) (Response, bool, error)
	Set(ctx context.Context, key string, resp Response) error
}

// CachedAPI serves repeated translations from a Cache. Cache failures are
// logged and never fail a request.
type CachedAPI struct {
	API
	cache  Cache
	logger *zap.SugaredLogger
}

// WithCache wraps api so that Translate consults cache first.
func WithCache(api API, cache Cache, logger *zap.SugaredLogger) *CachedAPI {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CachedAPI{API: api, cache: cache, logger: logger}
}

// Translate returns a cached response when one exists for req.
func (c *CachedAPI) Translate(ctx context.Context, req Request) (Response, error) {
	if req.SourceLanguage == "" {
		req.SourceLanguage = language.Auto
	}
	key := CacheKey(req)

	if resp, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warnw("translation cache read failed", "error", err)
	} else if ok {
		c.logger.Debugw("translation cache hit", "source", req.SourceLanguage, "target", req.TargetLanguage)
		return resp, nil
	}

	resp, err := c.API.Translate(ctx, req)
	if err != nil {
		return Response{}, err
	}

	if err := c.cache.Set(ctx, key, resp); err != nil {
		c.logger.Warnw("translation cache write failed", "error", err)
	}
	return resp, nil
}

// CacheKey derives the cache key of a request.
func CacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.SourceLanguage + "\x00" + req.TargetLanguage + "\x00" + req.Text))
	return req.SourceLanguage + ":" + req.TargetLanguage + ":" + hex.EncodeToString(sum[:])
}
