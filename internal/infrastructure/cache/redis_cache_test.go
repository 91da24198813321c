package cache

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/schoolfee-receipts/internal/config"
	domainRepo "github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := rediscontainer.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	c, err := NewRedisCache(&config.CacheConfig{
		Driver:    "redis",
		TTL:       time.Minute,
		RedisAddr: host + ":" + port.Port(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c := setupRedisCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "receipt:missing")
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)

	body := []byte("%PDF-1.4 fake")
	require.NoError(t, c.Set(ctx, "receipt:1:pdf", body))

	got, err := c.Get(ctx, "receipt:1:pdf")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	require.NoError(t, c.Delete(ctx, "receipt:1:pdf"))
	_, err = c.Get(ctx, "receipt:1:pdf")
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(&config.CacheConfig{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
