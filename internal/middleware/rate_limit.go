package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/i18n"
	"github.com/guttosm/quote-service/internal/metrics"
)

// RateLimitPrefix namespaces limiter counters in the store.
const RateLimitPrefix = "quote_rl"

// Rate limit response headers.
const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
)

// RateLimiter is a fixed window limiter keyed by API client.
type RateLimiter struct {
	limiter *limiter.Limiter
	backend string
}

// NewRateLimiter builds a limiter over an arbitrary store.
func NewRateLimiter(store limiter.Store, limit int, window time.Duration, backend string) *RateLimiter {
	rate := limiter.Rate{Period: window, Limit: int64(limit)}
	return &RateLimiter{limiter: limiter.New(store, rate), backend: backend}
}

// NewMemoryRateLimiter keeps counters in process memory. Limits are per
// instance.
func NewMemoryRateLimiter(limit int, window time.Duration) *RateLimiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          RateLimitPrefix,
		CleanUpInterval: time.Minute,
	})
	return NewRateLimiter(store, limit, window, "memory")
}

// NewRedisRateLimiter shares counters across instances through Redis.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) (*RateLimiter, error) {
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: RateLimitPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis limiter store: %w", err)
	}
	return NewRateLimiter(store, limit, window, "redis"), nil
}

// Backend names the store, "memory" or "redis".
func (rl *RateLimiter) Backend() string {
	return rl.backend
}

// RateLimit limits requests per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return rl.limit(func(c *gin.Context) string { return "ip:" + c.ClientIP() })
}

// ClientRateLimit limits requests per authenticated client, falling back to
// the client IP for anonymous calls.
func (rl *RateLimiter) ClientRateLimit() gin.HandlerFunc {
	return rl.limit(clientIdentifier)
}

func (rl *RateLimiter) limit(identify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := identify(c)
		lc, err := rl.limiter.Get(c.Request.Context(), key)
		if err != nil {
			// Store outages let traffic through.
			metrics.RecordRateLimit(rl.backend, "error")
			requestLogger(c).Warn().
				Err(err).
				Str("backend", rl.backend).
				Msg("Rate limit store unavailable")
			c.Next()
			return
		}

		c.Header(RateLimitLimitHeader, strconv.FormatInt(lc.Limit, 10))
		c.Header(RateLimitRemainingHeader, strconv.FormatInt(lc.Remaining, 10))
		c.Header(RateLimitResetHeader, strconv.FormatInt(lc.Reset, 10))

		if lc.Reached {
			metrics.RecordRateLimit(rl.backend, "limited")
			c.Header("Retry-After", strconv.FormatInt(retryAfter(lc.Reset, time.Now()), 10))
			message := i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewError(dto.ErrCodeRateLimit, message).WithRequestID(GetRequestID(c)))
			return
		}

		metrics.RecordRateLimit(rl.backend, "allowed")
		c.Next()
	}
}

// retryAfter is the whole number of seconds until reset, at least one.
func retryAfter(reset int64, now time.Time) int64 {
	wait := reset - now.Unix()
	if wait < 1 {
		return 1
	}
	return wait
}

func clientIdentifier(c *gin.Context) string {
	if clientID := GetClientID(c); clientID != "" {
		return "client:" + clientID
	}
	return "ip:" + c.ClientIP()
}
