package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"projecthub/pkg/platform/sentinel"
)

// MemoryTRL is an in-process token revocation list. Entries expire with the
// token they revoke, so the map never outgrows the set of live tokens.
type MemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

type MemoryOption func(*MemoryTRL)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(t *MemoryTRL) {
		if now != nil {
			t.now = now
		}
	}
}

func NewMemoryTRL(opts ...MemoryOption) *MemoryTRL {
	trl := &MemoryTRL{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(trl)
	}
	return trl
}

func (t *MemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.now().Add(ttl)
	return nil
}

func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiresAt, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if !t.now().Before(expiresAt) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}

// StartCleanup drops expired entries every interval until ctx is done.
func (t *MemoryTRL) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *MemoryTRL) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for jti, expiresAt := range t.revoked {
		if !now.Before(expiresAt) {
			delete(t.revoked, jti)
		}
	}
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
