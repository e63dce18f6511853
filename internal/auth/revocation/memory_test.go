package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/pkg/platform/sentinel"
)

func TestMemoryTRL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	trl := NewMemoryTRL(WithClock(func() time.Time { return now }))

	require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err := trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = trl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry must expire with the token")
}

func TestMemoryTRLRejectsNonPositiveTTL(t *testing.T) {
	err := NewMemoryTRL().RevokeToken(context.Background(), "jti", 0)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestMemoryTRLSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	trl := NewMemoryTRL(WithClock(func() time.Time { return now }))
	require.NoError(t, trl.RevokeToken(context.Background(), "short", time.Second))
	require.NoError(t, trl.RevokeToken(context.Background(), "long", time.Hour))

	now = now.Add(time.Minute)
	trl.sweep()

	assert.Len(t, trl.revoked, 1)
	assert.Contains(t, trl.revoked, "long")
}

func TestMemoryTRLStartCleanupStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewMemoryTRL().StartCleanup(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
