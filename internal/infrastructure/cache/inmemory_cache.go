package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryCache is a process-local Store with per-entry expiry. Used alone in
// single-instance deployments and as the L1 tier of TieredCache.
type InMemoryCache struct {
	entries   sync.Map // map[string]*cacheEntry
	ttl       time.Duration
	logger    *zap.Logger
	stopCh    chan struct{}
	closeOnce sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// InMemoryCacheOption configures an InMemoryCache
type InMemoryCacheOption func(*InMemoryCache)

// WithInMemoryLogger sets the logger
func WithInMemoryLogger(logger *zap.Logger) InMemoryCacheOption {
	return func(c *InMemoryCache) {
		c.logger = logger
	}
}

// NewInMemoryCache creates a cache whose entries live for ttl
func NewInMemoryCache(ttl time.Duration, opts ...InMemoryCacheOption) *InMemoryCache {
	c := &InMemoryCache{
		ttl:    ttl,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupExpired()
	return c
}

// Get returns the cached value for key
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if v, ok := c.entries.Load(key); ok {
		entry := v.(*cacheEntry)
		if !entry.isExpired() {
			c.hits.Add(1)
			return entry.value, true
		}
		c.entries.Delete(key)
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores value under key
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte) {
	c.entries.Store(key, &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete removes keys
func (c *InMemoryCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.entries.Delete(key)
	}
}

// Clear drops every entry
func (c *InMemoryCache) Clear() {
	c.entries.Clear()
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryCache) Size() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns hit and miss counters
func (c *InMemoryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *InMemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *InMemoryCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			removed := 0
			c.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired() {
					c.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("expired cache entries removed", zap.Int("count", removed))
			}
		}
	}
}

var _ Store = (*InMemoryCache)(nil)
