package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), &redis.Options{Addr: mr.Addr()}, "triage:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	entry := testEntry("abc", time.Hour)
	require.NoError(t, c.Set(ctx, entry))
	assert.True(t, mr.Exists("triage:abc"))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("triage:abc").Seconds(), 5)

	got, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Key)
	assert.Equal(t, entry.Result, got.Result)
	assert.Equal(t, "gpt-4", got.ModelUsed)
	assert.WithinDuration(t, entry.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("abc", time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	// already expired entries are not written
	require.NoError(t, c.Set(ctx, testEntry("stale", -time.Minute)))
	assert.False(t, mr.Exists("triage:stale"))
	assert.NoError(t, c.Cleanup(ctx))
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("abc", time.Hour)))
	require.NoError(t, c.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("triage:abc"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisCache(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1}, "", zap.NewNop())
	assert.Error(t, err)
}
