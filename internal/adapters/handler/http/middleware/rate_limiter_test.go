package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestRedis(t *testing.T) *redis.Client {
	_ = godotenv.Load("../../../../../.env")

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(ctx)
	return rdb
}

func get(router *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Allow requests under limit", func(t *testing.T) {
		rdb.FlushDB(ctx)

		limit := 5
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, time.Minute, nil))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 1; i <= limit; i++ {
			w := get(router, "/test", "192.168.1.100")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, strconv.Itoa(limit), w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, strconv.Itoa(limit-i), w.Header().Get("X-RateLimit-Remaining"))
		}
	})

	t.Run("Block requests over limit", func(t *testing.T) {
		rdb.FlushDB(ctx)

		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, 2, time.Minute, nil))
		router.GET("/test-block", func(c *gin.Context) { c.Status(http.StatusOK) })

		ip := "192.168.1.101"
		assert.Equal(t, http.StatusOK, get(router, "/test-block", ip).Code)
		assert.Equal(t, http.StatusOK, get(router, "/test-block", ip).Code)

		w := get(router, "/test-block", ip)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many requests")

		assert.Equal(t, http.StatusOK, get(router, "/test-block", "192.168.1.102").Code, "other clients are unaffected")
	})
}

func TestRateLimiterMiddleware_FailOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	badRdb := redis.NewClient(&redis.Options{Addr: "localhost:9999", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer badRdb.Close()

	router := gin.New()
	router.Use(RateLimiterMiddleware(badRdb, 5, time.Minute, nil))
	router.GET("/test-fail-open", func(c *gin.Context) { c.String(http.StatusOK, "passed") })

	w := get(router, "/test-fail-open", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "passed", w.Body.String())
}
