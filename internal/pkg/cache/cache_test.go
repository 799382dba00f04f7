package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "rgs", Env: "test"},
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c := NewCache(NewCacheParams{
		Channel: "rgs:cache:invalidate",
		Config:  testConfig(),
	})
	t.Cleanup(c.Close)
	return c
}

func TestIdempotencyKey_ScopedByAppAndEnv(t *testing.T) {
	c := newTestCache(t)
	key := c.IdempotencyKey("req-123")
	assert.Equal(t, "rgs:test:idem:req-123", key)
}

func TestCache_SetThenGet_RoundTrips(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "k1", "v1", time.Minute)
	require.NoError(t, err)

	val, found := c.Get(ctx, "k1")
	require.True(t, found)
	assert.Equal(t, "v1", val)
}

func TestCache_Get_MissingKeyNotFound(t *testing.T) {
	c := newTestCache(t)
	_, found := c.Get(context.Background(), "does-not-exist")
	assert.False(t, found)
}

func TestCache_GetWithSingleflight_CallsFnOnlyOnMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fn := func() (interface{}, error) {
		calls++
		return "computed", nil
	}

	v1, err := c.GetWithSingleflight(ctx, "sf-key", nil, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", v1)

	v2, err := c.GetWithSingleflight(ctx, "sf-key", nil, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", v2)
	assert.Equal(t, 1, calls, "fn should only run once, the second call hits the warmed cache")
}

func TestCache_Close_NilRedisClientDoesNotPanic(t *testing.T) {
	c := NewCache(NewCacheParams{
		Channel: "rgs:cache:invalidate",
		Config:  testConfig(),
	})
	assert.NotPanics(t, c.Close)
}

func TestCache_Expire_NoEventBusIsNoop(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k2", "v2", time.Minute))
	assert.NoError(t, c.Expire(ctx, "k2"))
}
