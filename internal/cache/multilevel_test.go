package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Done  int64 `json:"done"`
	Total int64 `json:"total"`
}

func TestMemoryCache_TTLAndPrefix(t *testing.T) {
	m := NewMemoryCache(10, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	m.Set("tasks:summary:1", []byte("a"), time.Second)
	m.Set("tasks:summary:2", []byte("b"), 0)
	m.Set("users:1", []byte("c"), 0)

	data, ok := m.Get("tasks:summary:1")
	require.True(t, ok)
	assert.Equal(t, []byte("a"), data)

	now = now.Add(2 * time.Second)
	_, ok = m.Get("tasks:summary:1")
	assert.False(t, ok)

	assert.Equal(t, 1, m.DeletePrefix("tasks:summary:"))
	_, ok = m.Get("tasks:summary:2")
	assert.False(t, ok)
	_, ok = m.Get("users:1")
	assert.True(t, ok)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemoryCache(2, time.Minute)
	m.Set("a", []byte("1"), 0)
	m.Set("b", []byte("2"), 0)
	m.Get("a")
	m.Set("c", []byte("3"), 0)

	_, ok := m.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestMultiLevelCache_MemoryOnly(t *testing.T) {
	c := NewMultiLevelCache(nil, Options{L1Size: 16, L1TTL: time.Minute})
	ctx := context.Background()

	var out summary
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", summary{Done: 2, Total: 5}, time.Minute))
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, summary{Done: 2, Total: 5}, out)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)

	snap := c.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.L1Hits)
	assert.Equal(t, int64(2), snap.Misses)
	assert.NoError(t, c.Health(ctx))
}

func TestMultiLevelCache_PromotesFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	c := NewMultiLevelCache(NewRedisCache(cfg), Options{})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, mr.Set("tasks:summary:7", `{"done":1,"total":4}`))

	var out summary
	require.NoError(t, c.Get(ctx, "tasks:summary:7", &out))
	assert.Equal(t, int64(4), out.Total)

	mr.Del("tasks:summary:7")
	require.NoError(t, c.Get(ctx, "tasks:summary:7", &out), "second read is served from memory")

	snap := c.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.L2Hits)
	assert.Equal(t, int64(1), snap.L1Hits)
}

func TestMultiLevelCache_DeletePrefixBothLevels(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	c := NewMultiLevelCache(NewRedisCache(cfg), Options{})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tasks:summary:1", summary{Total: 1}, time.Minute))
	require.NoError(t, c.Set(ctx, "tasks:summary:2", summary{Total: 2}, time.Minute))
	require.NoError(t, c.DeletePrefix(ctx, "tasks:summary:"))

	assert.Empty(t, mr.Keys())
	var out summary
	assert.ErrorIs(t, c.Get(ctx, "tasks:summary:1", &out), ErrCacheMiss)
}

func TestMultiLevelCache_BreakerOpensWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	cfg.MaxRetries = 0
	cfg.OpTimeout = 200 * time.Millisecond
	c := NewMultiLevelCache(NewRedisCache(cfg), Options{
		Breaker: &CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Hour, HalfOpenMaxCalls: 1},
	})
	defer c.Close()
	ctx := context.Background()
	mr.Close()

	var out summary
	assert.Error(t, c.Get(ctx, "a", &out))
	assert.Error(t, c.Get(ctx, "b", &out))
	assert.ErrorIs(t, c.Get(ctx, "c", &out), ErrCacheDown)

	// memory still serves writes while redis is unavailable
	assert.ErrorIs(t, c.Set(ctx, "d", summary{Total: 1}, time.Minute), ErrCacheDown)
	require.NoError(t, c.Get(ctx, "d", &out))
	assert.Equal(t, int64(1), out.Total)

	assert.Error(t, c.Health(ctx))
	stats := c.Stats()
	assert.Contains(t, stats, "l2")
	assert.GreaterOrEqual(t, c.Metrics().Snapshot().Errors, int64(3))
}
