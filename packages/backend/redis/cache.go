package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unitranslate/packages/backend/translation"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces translation cache keys.
const DefaultKeyPrefix = "unitranslate:translation"

// TranslationCache stores translation responses as JSON with a TTL.
type TranslationCache struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewTranslationCache creates a cache. A ttl of 0 keeps entries forever.
func NewTranslationCache(client goredis.Cmdable, ttl time.Duration) *TranslationCache {
	return &TranslationCache{client: client, prefix: DefaultKeyPrefix, ttl: ttl}
}

func (c *TranslationCache) key(key string) string {
	return c.prefix + ":" + key
}

// Get returns the cached response for key. A missing key is not an error.
func (c *TranslationCache) Get(ctx context.Context, key string) (translation.Response, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return translation.Response{}, false, nil
	}
	if err != nil {
		return translation.Response{}, false, fmt.Errorf("translation cache get: %w", err)
	}

	var resp translation.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return translation.Response{}, false, fmt.Errorf("translation cache decode: %w", err)
	}
	return resp, true, nil
}

// Set stores resp under key.
func (c *TranslationCache) Set(ctx context.Context, key string, resp translation.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("translation cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("translation cache set: %w", err)
	}
	return nil
}

var _ translation.Cache = (*TranslationCache)(nil)
