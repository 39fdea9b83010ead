package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs a handler has already seen, so
// a redelivered OrderPlaced does not send a second confirmation email.
type IdempotencyStore interface {
	// MarkProcessed reports true when eventID was not yet marked
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// Forget drops the mark after a failed delivery
	Forget(ctx context.Context, eventID string) error
	Close() error
}

// IdempotencyConfig controls how long processed IDs are remembered
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps marks for a day, longer than the outbox
// retry window
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
