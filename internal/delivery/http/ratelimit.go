package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/styleswipe/pkg/logger"
)

// RateLimitDecision is the outcome of one limiter check
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter decides whether the caller identified by key may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitDecision, error)
}

// windowStore keeps request timestamps per key
type windowStore interface {
	// count drops entries older than since and returns how many remain
	count(ctx context.Context, key string, since time.Time) (int, error)
	add(ctx context.Context, key, member string, at time.Time, ttl time.Duration) error
}

// RedisRateLimiter implements a sliding window with a Redis sorted set.
// Only admitted requests are recorded, so a rejected caller's window
// drains on schedule.
type RedisRateLimiter struct {
	store       windowStore
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRedisRateLimiter creates a new rate limiter
func NewRedisRateLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisRateLimiter {
	return newRateLimiter(redisWindow{client: client}, maxRequests, window)
}

func newRateLimiter(store windowStore, maxRequests int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{store: store, maxRequests: maxRequests, window: window, now: time.Now}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (RateLimitDecision, error) {
	key = "ratelimit:" + key
	now := rl.now()

	count, err := rl.store.count(ctx, key, now.Add(-rl.window))
	if err != nil {
		return RateLimitDecision{}, err
	}
	decision := RateLimitDecision{
		Limit: rl.maxRequests,
		Reset: now.Add(rl.window),
	}
	if count >= rl.maxRequests {
		return decision, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()[:8]
	if err := rl.store.add(ctx, key, member, now, rl.window+time.Minute); err != nil {
		return RateLimitDecision{}, err
	}
	decision.Allowed = true
	decision.Remaining = max(rl.maxRequests-count-1, 0)
	return decision, nil
}

type redisWindow struct {
	client *redis.Client
}

func (w redisWindow) count(ctx context.Context, key string, since time.Time) (int, error) {
	pipe := w.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(since.UnixNano(), 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}

func (w redisWindow) add(ctx context.Context, key, member string, at time.Time, ttl time.Duration) error {
	pipe := w.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixNano()), Member: member})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// rateLimitMiddleware rejects callers over the limit with 429. Limiter
// failures let the request through.
func (h *Handler) rateLimitMiddleware(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		decision, err := h.limiter.Allow(r.Context(), endpoint+":"+ip)
		if err != nil {
			logger.Error(r.Context()).Err(err).Str("client_ip", ip).Msg("Rate limiter error")
			handler(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			logger.Warn(r.Context()).
				Str("client_ip", ip).
				Str("endpoint", endpoint).
				Int("limit", decision.Limit).
				Msg("Rate limit exceeded")
			retry := time.Until(decision.Reset).Round(time.Second)
			respondJSON(w, http.StatusTooManyRequests, Response{
				Success: false,
				Error:   "Rate limit exceeded",
				Message: fmt.Sprintf("Too many requests. Try again in %v", retry),
			})
			return
		}
		handler(w, r)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
