package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// Sent entries older than CleanupRetention are purged every
	// CleanupInterval while CleanupEnabled is set
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// OutboxProcessor moves committed outbox entries onto the in-process bus,
// where the mailer and audit handlers pick them up
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger.Named("outbox"),
		wake:       make(chan struct{}, 1),
	}
}

// Start launches the delivery loop; it returns immediately
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Bool("cleanup", p.config.CleanupEnabled),
	)
	return nil
}

// Stop waits for the in-flight batch, or until ctx expires
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	select {
	case <-p.done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger requests an immediate poll. Calls made while one is already
// queued collapse into it.
func (p *OutboxProcessor) Trigger() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *OutboxProcessor) run(ctx context.Context) {
	defer close(p.done)

	poll := time.NewTicker(p.config.PollInterval)
	defer poll.Stop()

	// a nil channel never fires, which disables the purge case
	var purge <-chan time.Time
	if p.config.CleanupEnabled {
		t := time.NewTicker(p.config.CleanupInterval)
		defer t.Stop()
		purge = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			p.ProcessOnce(ctx)
		case <-p.wake:
			p.ProcessOnce(ctx)
		case <-purge:
			p.purgeSent(ctx)
		}
	}
}

// ProcessOnce handles a batch of new entries, then a batch whose retry
// backoff has elapsed. It returns how many were delivered.
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) int {
	delivered := 0

	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("load pending entries", zap.Error(err))
		return delivered
	}
	delivered += p.deliverAll(ctx, pending)

	due, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("load retryable entries", zap.Error(err))
		return delivered
	}
	return delivered + p.deliverAll(ctx, due)
}

func (p *OutboxProcessor) deliverAll(ctx context.Context, entries []*shared.OutboxEntry) int {
	if len(entries) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	// another instance may have claimed some of them in the meantime
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("claim outbox entries", zap.Int("count", len(ids)), zap.Error(err))
		return 0
	}

	n := 0
	for _, entry := range claimed {
		if p.deliver(ctx, entry) {
			n++
		}
	}
	return n
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) bool {
	log := p.logger.With(
		zap.Stringer("event_id", entry.EventID),
		zap.String("event_type", entry.EventType),
	)

	evt, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.eventBus.Publish(ctx, evt)
	}
	if err != nil {
		entry.MarkFailed(err.Error())
		if entry.IsDead() {
			log.Warn("outbox entry is dead",
				zap.String("aggregate_type", entry.AggregateType),
				zap.Stringer("aggregate_id", entry.AggregateID),
				zap.Int("attempts", entry.RetryCount),
				zap.Error(err),
			)
		} else {
			log.Error("outbox delivery failed",
				zap.Int("attempt", entry.RetryCount),
				zap.Timep("next_retry_at", entry.NextRetryAt),
				zap.Error(err),
			)
		}
		if uerr := p.repo.Update(ctx, entry); uerr != nil {
			log.Error("record outbox failure", zap.Error(uerr))
		}
		return false
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		// the handlers already ran; the idempotency store absorbs the redelivery
		log.Error("record outbox delivery", zap.Error(err))
		return false
	}
	log.Debug("outbox entry delivered")
	return true
}

func (p *OutboxProcessor) purgeSent(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	n, err := p.repo.DeleteOlderThan(ctx, cutoff)
	switch {
	case err != nil:
		p.logger.Error("purge sent outbox entries", zap.Error(err))
	case n > 0:
		p.logger.Info("purged sent outbox entries", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}
}
