package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/trio-connect/internal/cache"
)

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestBrowseSessionRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	_, ok, err := c.LoadBrowse(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	want := cache.BrowseSession{Filter: "Female", Candidates: []int64{4, 2, 9}}
	require.NoError(t, c.SaveBrowse(ctx, 1, want, time.Minute))

	got, ok, err := c.LoadBrowse(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.LoadBrowse(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDropBrowse(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, c.SaveBrowse(ctx, 3, cache.BrowseSession{Filter: "Any"}, time.Minute))
	require.NoError(t, c.DropBrowse(ctx, 3))
	_, ok, err := c.LoadBrowse(ctx, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPendingCount(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	_, ok, err := c.GetPendingCount(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetPendingCount(ctx, 42, 5))
	n, ok, err := c.GetPendingCount(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)
	assert.True(t, mr.TTL(c.KeyForPendingCount(42)) > 0)

	require.NoError(t, c.InvalidatePendingCount(ctx, 42))
	_, ok, err = c.GetPendingCount(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}
