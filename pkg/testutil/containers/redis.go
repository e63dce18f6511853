//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7.4-alpine"

// RedisContainer backs the revocation list suites.
type RedisContainer struct {
	Container *tcredis.RedisContainer
	URL       string
	Client    *redis.Client
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	c, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start %s: %v", redisImage, err)
	}
	rc := &RedisContainer{Container: c}

	if rc.URL, err = c.ConnectionString(ctx); err != nil {
		rc.abort(t, "connection string", err)
	}
	opts, err := redis.ParseURL(rc.URL)
	if err != nil {
		rc.abort(t, "parse url", err)
	}
	rc.Client = redis.NewClient(opts)
	if err := rc.Client.Ping(ctx).Err(); err != nil {
		rc.abort(t, "ping", err)
	}
	return rc
}

func (r *RedisContainer) abort(t *testing.T, step string, err error) {
	t.Helper()
	if r.Client != nil {
		_ = r.Client.Close()
	}
	_ = r.Container.Terminate(context.Background())
	t.Fatalf("redis %s: %v", step, err)
}

// FlushAll drops every key. Call it from SetupTest.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
