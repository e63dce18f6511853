package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/platform/config"
)

func TestOptions(t *testing.T) {
	t.Run("unset url", func(t *testing.T) {
		_, err := Options(config.Redis{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("pool size override", func(t *testing.T) {
		opts, err := Options(config.Redis{URL: "redis://localhost:6379/2", PoolSize: 7})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 7, opts.PoolSize)
	})

	t.Run("bad scheme", func(t *testing.T) {
		_, err := Options(config.Redis{URL: "http://localhost"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotConfigured)
	})
}

func TestOpenWithoutURL(t *testing.T) {
	c, err := Open(context.Background(), config.Redis{})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
