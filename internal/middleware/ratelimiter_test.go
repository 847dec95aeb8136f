package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nabhonil04/stockpredict/internal/middleware"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newRedisLimiter(t *testing.T, limit int64, clock *testClock) (middleware.RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := middleware.NewRedisRateLimiter(client, limit, clock.Now, discardLogger())
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter, mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 15, 0, time.UTC)}
	limiter, mr := newRedisLimiter(t, 3, clock)
	ctx := context.Background()
	require.NoError(t, limiter.Ping(ctx))

	for i := int64(1); i <= 3; i++ {
		decision, err := limiter.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 3-i, decision.Remaining)
	}

	decision, err := limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, int64(0), decision.Remaining)
	assert.Equal(t, 45*time.Second, decision.RetryAfter)

	// Other clients have their own budget.
	decision, err = limiter.Allow(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// The next window starts fresh.
	clock.now = clock.now.Add(time.Minute)
	decision, err = limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	for _, key := range mr.Keys() {
		assert.True(t, mr.TTL(key) > 0, "key %s has no expiry", key)
	}
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	clock := &testClock{now: time.Now()}
	limiter, mr := newRedisLimiter(t, 1, clock)
	mr.Close()
	assert.Error(t, limiter.Ping(context.Background()))

	decision, err := limiter.Allow(context.Background(), "ip:1.2.3.4")
	assert.Error(t, err)
	assert.True(t, decision.Allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 30, 0, time.UTC)}
	limiter, _ := newRedisLimiter(t, 2, clock)

	r := gin.New()
	r.GET("/stocks/search", middleware.RateLimit(limiter, discardLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/stocks/search", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	limited := do()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "30", limited.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Rate limit exceeded"}`, limited.Body.String())
}

func TestNoOpRateLimiter(t *testing.T) {
	limiter := middleware.NewNoOpRateLimiter(discardLogger())

	for i := 0; i < 100; i++ {
		decision, err := limiter.Allow(context.Background(), "ip:1.2.3.4")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}
	assert.NoError(t, limiter.Close())
}
