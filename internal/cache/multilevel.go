package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Stats() map[string]interface{}
	Health(ctx context.Context) error
	Close() error
}

type Options struct {
	L1Size  int
	L1TTL   time.Duration
	Breaker *CircuitBreakerConfig
	Logger  *zap.Logger
}

// MultiLevelCache reads through an in-process LRU before Redis. Redis is
// optional and every call to it goes through a circuit breaker.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics
	logger  *zap.Logger
}

var _ Cache = (*MultiLevelCache)(nil)

func NewMultiLevelCache(redisCache *RedisCache, opts Options) *MultiLevelCache {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &MultiLevelCache{
		l1:      NewMemoryCache(opts.L1Size, opts.L1TTL),
		l2:      redisCache,
		breaker: NewCircuitBreaker(opts.Breaker),
		metrics: NewCacheMetrics(),
		logger:  log,
	}
	c.breaker.OnStateChange(func(from, to CircuitBreakerState) {
		log.Warn("redis circuit breaker state changed",
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	})
	return c
}

func (c *MultiLevelCache) Metrics() *CacheMetrics {
	return c.metrics
}

func (c *MultiLevelCache) l2Call(fn func() error) error {
	err := c.breaker.Execute(fn)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		c.metrics.RecordError()
		if errors.Is(err, ErrCircuitBreakerOpen) {
			return ErrCacheDown
		}
	}
	return err
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	c.l1.Set(key, data, ttl)
	c.metrics.RecordSet()

	if c.l2 == nil {
		return nil
	}
	return c.l2Call(func() error {
		return c.l2.Set(ctx, key, data, ttl)
	})
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if data, ok := c.l1.Get(key); ok {
		c.metrics.RecordL1Hit()
		return json.Unmarshal(data, dest)
	}
	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	var data []byte
	err := c.l2Call(func() error {
		var getErr error
		data, getErr = c.l2.Get(ctx, key)
		if errors.Is(getErr, ErrCacheMiss) {
			// a miss is a healthy answer
			return nil
		}
		return getErr
	})
	if err != nil {
		c.metrics.RecordMiss()
		return err
	}
	if data == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.metrics.RecordError()
		return fmt.Errorf("failed to decode cache value: %w", err)
	}
	c.metrics.RecordL2Hit()
	c.l1.Set(key, data, 0)
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.l1.Delete(key)
	c.metrics.RecordDelete()
	if c.l2 == nil {
		return nil
	}
	return c.l2Call(func() error {
		return c.l2.Delete(ctx, key)
	})
}

func (c *MultiLevelCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.l1.DeletePrefix(prefix)
	c.metrics.RecordDelete()
	if c.l2 == nil {
		return nil
	}
	return c.l2Call(func() error {
		return c.l2.DeletePrefix(ctx, prefix)
	})
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
		"breaker": c.breaker.Stats(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

// Health reports Redis reachability; a cache without Redis is always healthy.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Close() error {
	c.l1.Purge()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
