package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/http/respond"
	"github.com/wolfman30/careflow-portal/internal/observability/metrics"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter shared by every instance pointing at
// the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisLimiter allows limit requests per window for each key.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "careflow:ratelimit",
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	windowKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

const (
	defaultMaxKeys = 4096
	localIdleTTL   = 10 * time.Minute
)

// LocalLimiter keeps one token bucket per key in process memory. At most
// maxKeys buckets are held; idle buckets go first, then the least recently
// seen.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	limit    rate.Limit
	burst    int
	maxKeys  int
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows perMinute requests per minute per key, with bursts
// up to perMinute.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &LocalLimiter{
		limiters: make(map[string]*localEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		maxKeys:  defaultMaxKeys,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.maxKeys {
			l.evict(now)
		}
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) evict(now time.Time) {
	cutoff := now.Add(-localIdleTTL)
	var oldestKey string
	var oldest time.Time
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			continue
		}
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = key, e.lastSeen
		}
	}
	if len(l.limiters) >= l.maxKeys && oldestKey != "" {
		delete(l.limiters, oldestKey)
	}
}

// NewLimiter prefers Redis when a client is available.
func NewLimiter(client *redis.Client, perMinute int) Limiter {
	if client != nil {
		return NewRedisLimiter(client, perMinute, time.Minute)
	}
	return NewLocalLimiter(perMinute)
}

// RateLimit rejects callers over the limit with 429. Callers with a token
// that verifies are keyed by their user id; everyone else is keyed by client
// IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, verifier auth.Verifier, route string, m *metrics.PortalMetrics, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := route + ":" + callerKey(r, verifier)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", "route", route, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				m.ObserveRateLimited(route)
				respond.ErrorStatus(w, http.StatusTooManyRequests, apperr.New(apperr.KindInvalidRequest, "Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerKey reads RemoteAddr only; chi's RealIP has already applied trusted
// proxy headers.
func callerKey(r *http.Request, verifier auth.Verifier) string {
	if verifier != nil {
		if token := auth.BearerToken(r.Header.Get("Authorization")); token != "" {
			if id, err := verifier.Verify(r.Context(), token); err == nil && id.UserID != "" {
				return "user:" + id.UserID
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}
