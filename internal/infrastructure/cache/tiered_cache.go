package cache

import (
	"context"

	"go.uber.org/zap"
)

// TieredCache reads through a local L1 into a shared L2. Writes go to both
// tiers; deletes are broadcast so other instances drop their L1 copies.
type TieredCache struct {
	l1          *InMemoryCache
	l2          Store
	invalidator Invalidator
	logger      *zap.Logger
}

// NewTieredCache combines l1 and l2. invalidator may be nil for a single
// instance.
func NewTieredCache(l1 *InMemoryCache, l2 Store, invalidator Invalidator, logger *zap.Logger) *TieredCache {
	return &TieredCache{
		l1:          l1,
		l2:          l2,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Listen applies invalidations from other instances until ctx ends
func (c *TieredCache) Listen(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, func(keys []string) {
		c.l1.Delete(ctx, keys...)
	})
}

// Get checks L1, then L2, filling L1 on an L2 hit
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.l1.Get(ctx, key); ok {
		return v, true
	}
	v, ok := c.l2.Get(ctx, key)
	if !ok {
		return nil, false
	}
	c.l1.Set(ctx, key, v)
	return v, true
}

// Set writes both tiers
func (c *TieredCache) Set(ctx context.Context, key string, value []byte) {
	c.l2.Set(ctx, key, value)
	c.l1.Set(ctx, key, value)
}

// Delete removes keys from both tiers and notifies other instances
func (c *TieredCache) Delete(ctx context.Context, keys ...string) {
	c.l1.Delete(ctx, keys...)
	c.l2.Delete(ctx, keys...)
	if c.invalidator == nil {
		return
	}
	if err := c.invalidator.Publish(ctx, keys...); err != nil {
		c.logger.Warn("failed to broadcast cache invalidation", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Close releases both tiers and the invalidator
func (c *TieredCache) Close() error {
	if c.invalidator != nil {
		_ = c.invalidator.Close()
	}
	_ = c.l2.Close()
	return c.l1.Close()
}

var _ Store = (*TieredCache)(nil)
