// Package redis opens the optional Redis connection backing the token
// revocation list.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"projecthub/internal/platform/config"
)

const pingTimeout = 3 * time.Second

// ErrNotConfigured is returned by Open when no URL is set.
var ErrNotConfigured = errors.New("redis not configured")

// Options turns the config section into go-redis options.
func Options(cfg config.Redis) (*goredis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	return opts, nil
}

// Open connects and pings. The client is closed again if the ping fails.
func Open(ctx context.Context, cfg config.Redis) (*goredis.Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// HealthCheck adapts a client to the router's readiness check.
func HealthCheck(c goredis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		return c.Ping(ctx).Err()
	}
}
