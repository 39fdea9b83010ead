package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "storefront:cache:"

// RedisCache is a Store shared by every instance
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a cache on top of an existing client. The caller
// keeps ownership of the client.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached value for key. Redis errors are logged and
// reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	timing := telemetry.StartTiming(ctx, "cache", "redis")
	defer timing.Stop()

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key with the cache TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes keys
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		c.logger.Warn("redis cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Close is a no-op, the client is shared
func (c *RedisCache) Close() error {
	return nil
}

var _ Store = (*RedisCache)(nil)
