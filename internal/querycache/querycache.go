// Package querycache memoizes idempotent backend reads for a fixed stale time.
package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const defaultSize = 64

// Cache holds values of one kind, each fresh for ttl after it was loaded.
// Concurrent loads of the same key share a single call.
type Cache[V any] struct {
	lru    *expirable.LRU[string, V]
	group  singleflight.Group
	logger *slog.Logger
	name   string
}

func New[V any](name string, ttl time.Duration, logger *slog.Logger) *Cache[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[V]{
		lru:    expirable.NewLRU[string, V](defaultSize, nil, ttl),
		logger: logger,
		name:   name,
	}
}

// Get returns the cached value for key or calls load. Failed loads are not
// cached.
func (c *Cache[V]) Get(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	res, err, shared := c.group.Do(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if shared {
		c.logger.Debug("query shared", "cache", c.name, "key", key)
	}
	if err != nil {
		var zero V
		return zero, fmt.Errorf("loading %s %s: %w", c.name, key, err)
	}
	return res.(V), nil
}

func (c *Cache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

func (c *Cache[V]) Purge() {
	c.lru.Purge()
}
