package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestOptions_Addr(t *testing.T) {
	assert.Equal(t, "localhost:6379", Options{Host: "localhost", Port: "6379"}.Addr())
	assert.Equal(t, "[::1]:6380", Options{Host: "::1", Port: "6380"}.Addr())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, Options{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestRedisClient_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	rdb, err := NewRedisClient(context.Background(), Options{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", "secret_redis_pass_local"),
		DB:       1,
	})
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err(), "Failed to flush test DB")

	t.Run("Connection Ping", func(t *testing.T) {
		pong, err := rdb.Ping(ctx).Result()
		assert.NoError(t, err)
		assert.Equal(t, "PONG", pong)
	})

	t.Run("Expire Check", func(t *testing.T) {
		key := "test_expire"
		require.NoError(t, rdb.Set(ctx, key, "expire_me", 1*time.Second).Err())

		time.Sleep(1100 * time.Millisecond)

		_, err := rdb.Get(ctx, key).Result()
		assert.ErrorIs(t, err, redis.Nil)
	})
}
