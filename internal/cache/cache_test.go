package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewWithRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_SetGetExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, "k"), "missing key is a miss")

	c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.Equal(t, []byte("v"), c.Get(ctx, "k"))

	mr.FastForward(2 * time.Minute)
	assert.Nil(t, c.Get(ctx, "k"), "expired key is a miss")
}

func TestClient_FailsSafeWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	assert.NotPanics(t, func() {
		c.Set(ctx, "k", []byte("v"), time.Minute)
	})
	assert.Nil(t, c.Get(ctx, "k"))
	assert.Error(t, c.Ping(ctx))
}

func TestClient_NilIsNoop(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, "k"))
	c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.Error(t, c.Ping(ctx))
	require.NoError(t, c.Close())
}
