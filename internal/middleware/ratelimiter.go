package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Nabhonil04/stockpredict/internal/config"
	"github.com/Nabhonil04/stockpredict/internal/metrics"
)

const rateWindow = time.Minute

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter counts requests per client key in fixed one-minute windows
type RateLimiter interface {
	// Allow records one request for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (Decision, error)

	// Ping checks the backing store.
	Ping(ctx context.Context) error

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter creates a new Redis-based rate limiter
func NewRateLimiter(cfg *config.Config, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDatabase),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("❌ [RateLimiter] Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [RateLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"limit_per_minute", cfg.RateLimitPerMinute,
	)

	return NewRedisRateLimiter(client, cfg.RateLimitPerMinute, time.Now, logger), nil
}

// NewRedisRateLimiter wraps an existing client. now supplies the window clock.
func NewRedisRateLimiter(client *redis.Client, limit int64, now func() time.Time, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  limit,
		now:    now,
		logger: logger,
	}
}

// windowKey generates the Redis key for the current window
// Format: rate:minute:{key}:{unix minute}
func windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("rate:minute:%s:%d", key, windowStart.Unix()/int64(rateWindow.Seconds()))
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.now()
	windowStart := now.Truncate(rateWindow)
	retryAfter := windowStart.Add(rateWindow).Sub(now)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey(key, windowStart))
	pipe.Expire(ctx, windowKey(key, windowStart), rateWindow)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment window count", "error", err, "key", key)
		// On error, allow the request but log it
		return Decision{Allowed: true, Limit: r.limit, Remaining: r.limit}, err
	}

	count := incr.Val()
	decision := Decision{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Remaining: max(r.limit-count, 0),
	}
	if !decision.Allowed {
		decision.RetryAfter = retryAfter
	}
	return decision, nil
}

func (r *redisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	return Decision{Allowed: true, Limit: -1, Remaining: -1}, nil
}

func (r *NoOpRateLimiter) Ping(ctx context.Context) error {
	return nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}

// RateLimit rejects clients over their per-minute budget with 429. The client
// key is the authenticated user when there is one, the client IP otherwise.
func RateLimit(limiter RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if user, ok := CurrentUser(c); ok {
			key = "user:" + strconv.FormatUint(uint64(user.ID), 10)
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("⚠️ [RateLimiter] Check failed, allowing request", "error", err)
			c.Next()
			return
		}

		if decision.Limit >= 0 {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		}

		if !decision.Allowed {
			seconds := int64(math.Ceil(decision.RetryAfter.Seconds()))
			metrics.RateLimitedTotal.Inc()
			logger.Warn("🚦 [RateLimiter] Rate limit exceeded", "key", key)
			c.Header("Retry-After", strconv.FormatInt(max(seconds, 1), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
