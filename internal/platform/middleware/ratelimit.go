package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"projecthub/internal/platform/metrics"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

const (
	clientIdleTTL     = 3 * time.Minute
	sweepInterval     = time.Minute
	defaultMaxClients = 10000
)

// IPRateLimiter throttles requests per client IP with a token bucket each.
// Idle buckets are swept lazily on the request path. At most maxClients
// buckets are tracked; an unseen IP arriving while the table is full is
// refused rather than evicting a live bucket.
type IPRateLimiter struct {
	limit   rate.Limit
	burst   int
	max     int
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows perSecond requests per IP with the given burst.
func NewIPRateLimiter(perSecond float64, burst int, logger *slog.Logger, m *metrics.Metrics) *IPRateLimiter {
	return &IPRateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		max:     defaultMaxClients,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// WithMaxClients bounds the number of tracked IPs.
func (l *IPRateLimiter) WithMaxClients(n int) *IPRateLimiter {
	if n > 0 {
		l.max = n
	}
	return l
}

// Allow reports whether the IP may proceed now.
func (l *IPRateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= l.max {
			l.sweep(now)
			if len(l.clients) >= l.max {
				return false
			}
		}
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) sweep(now time.Time) {
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) >= clientIdleTTL {
			delete(l.clients, k)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the limit with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = ClientIPFromRequest(r)
		}
		if !l.Allow(ip) {
			l.metrics.IncrementLoginThrottled()
			l.logger.WarnContext(ctx, "rate limit exceeded",
				"ip", ip,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			retryAfter := 1
			if l.limit > 0 {
				retryAfter = int(math.Ceil(1 / float64(l.limit)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "too many requests, please try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
