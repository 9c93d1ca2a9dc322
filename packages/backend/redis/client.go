// Package redis wires go-redis clients for the translation cache and the
// session status channel.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// NewClient creates a go-redis client. addr is either host:port or a
// redis:// / rediss:// URL, which may carry credentials and a database.
func NewClient(addr string) (*goredis.Client, error) {
	opts, err := parseAddr(addr)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

// Ping checks connectivity, bounded by a short timeout when ctx has none.
func Ping(ctx context.Context, client goredis.Cmdable) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func parseAddr(addr string) (*goredis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &goredis.Options{Addr: addr}, nil
}
