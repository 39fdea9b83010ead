package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultInvalidationChannel = "storefront:cache:invalidate"
	defaultCloseTimeout        = 5 * time.Second
)

// InvalidationMessage tells other instances to drop keys from their L1 tier
type InvalidationMessage struct {
	Keys      []string `json:"keys"`
	Source    string   `json:"source"`
	Timestamp int64    `json:"timestamp"`
}

// Invalidator broadcasts key invalidations between instances
type Invalidator interface {
	Publish(ctx context.Context, keys ...string) error
	// Subscribe blocks, calling fn for every message from another instance
	Subscribe(ctx context.Context, fn func(keys []string)) error
	Close() error
}

// RedisInvalidator implements Invalidator with Redis Pub/Sub
type RedisInvalidator struct {
	client    *redis.Client
	channel   string
	source    string
	logger    *zap.Logger
	mu        sync.Mutex
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	isRunning bool
}

// NewRedisInvalidator creates an invalidator on a shared client
func NewRedisInvalidator(client *redis.Client, logger *zap.Logger) *RedisInvalidator {
	return &RedisInvalidator{
		client:  client,
		channel: defaultInvalidationChannel,
		source:  uuid.NewString(),
		logger:  logger,
		doneCh:  make(chan struct{}),
	}
}

// Publish broadcasts an invalidation for keys
func (i *RedisInvalidator) Publish(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	data, err := json.Marshal(InvalidationMessage{
		Keys:      keys,
		Source:    i.source,
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe listens until ctx is cancelled or Close is called
func (i *RedisInvalidator) Subscribe(ctx context.Context, fn func(keys []string)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.isRunning = true
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.doneOnce.Do(func() { close(i.doneCh) })
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("cache invalidation channel closed")
				return nil
			}
			var m InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("invalid cache invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			if m.Source == i.source {
				continue
			}
			fn(m.Keys)
		}
	}
}

// Close stops a running subscription. The client is not closed.
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn == nil {
		return nil
	}
	cancelFn()
	select {
	case <-i.doneCh:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("timeout waiting for invalidation subscription to stop")
	}
	return nil
}

var _ Invalidator = (*RedisInvalidator)(nil)
