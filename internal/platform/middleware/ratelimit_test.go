package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/platform/logger"
	"projecthub/internal/platform/metrics"
)

func TestIPRateLimiterAllow(t *testing.T) {
	l := NewIPRateLimiter(1, 2, logger.Discard(), nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "token refilled after one second")
}

func TestIPRateLimiterSweepsIdleClients(t *testing.T) {
	l := NewIPRateLimiter(1, 1, logger.Discard(), nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	require.Equal(t, 2, l.size())

	now = now.Add(clientIdleTTL + time.Second)
	l.Allow("10.0.0.3")
	assert.Equal(t, 1, l.size())
}

func TestIPRateLimiterMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	l := NewIPRateLimiter(1, 1, logger.Discard(), m)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "203.0.113.5:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginThrottled))
}

func TestIPRateLimiterIgnoresSpoofedForwardingHeaders(t *testing.T) {
	l := NewIPRateLimiter(1, 2, logger.Discard(), nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := ClientMetadata(nil)(l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	allowed, throttled := 0, 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "203.0.113.7:4444"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		switch rec.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			throttled++
		}
	}

	assert.Equal(t, 2, allowed, "only the burst gets through")
	assert.Equal(t, 48, throttled)
	assert.Equal(t, 1, l.size(), "one bucket for the single peer")
}

func TestIPRateLimiterBoundsTrackedClients(t *testing.T) {
	l := NewIPRateLimiter(1, 1, logger.Discard(), nil).WithMaxClients(2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.False(t, l.Allow("10.0.0.3"), "table full, unseen client refused")
	assert.Equal(t, 2, l.size())

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "known clients keep their bucket")

	now = now.Add(clientIdleTTL + time.Second)
	assert.True(t, l.Allow("10.0.0.3"), "idle buckets are reclaimed when full")
	assert.LessOrEqual(t, l.size(), 2)
}
