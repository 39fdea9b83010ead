package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const maxL1TTL = time.Minute

// NewIdempotencyStore returns a redis store when a client is available and
// an in-memory one otherwise. The in-memory store does not share state
// between instances, so duplicates become possible when scaled out.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis unavailable, using in-memory idempotency store. " +
		"Events may be handled twice when running more than one instance.")
	return NewInMemoryIdempotencyStore()
}

// NewProductStore builds the product response cache. With redis it is
// tiered with a short-lived L1; without it, in-memory only.
func NewProductStore(cfg config.CacheConfig, client *redis.Client, logger *zap.Logger) Store {
	if client == nil {
		return NewInMemoryCache(cfg.ProductTTL, WithInMemoryLogger(logger))
	}
	return NewTieredCache(
		NewInMemoryCache(min(cfg.ProductTTL, maxL1TTL), WithInMemoryLogger(logger)),
		NewRedisCache(client, cfg.ProductTTL, logger),
		NewRedisInvalidator(client, logger),
		logger,
	)
}
