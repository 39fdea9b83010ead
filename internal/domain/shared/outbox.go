package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox entry
type OutboxStatus string

// An entry moves PENDING -> PROCESSING -> SENT on success. A failed delivery
// parks it in FAILED until its backoff elapses, and the last allowed failure
// moves it to DEAD where only staff can requeue it.
const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

var (
	errOutboxNotClaimable = NewDomainError("INVALID_STATE", "outbox entry is not pending or failed")
	errOutboxNotDead      = NewDomainError("INVALID_STATE", "can only retry dead letter entries")
)

// OutboxEntry is a serialized domain event written in the same transaction
// as the order or customer change that raised it
type OutboxEntry struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string       `gorm:"type:varchar(100);not null;index"`
	AggregateID   uuid.UUID    `gorm:"type:uuid;not null"`
	AggregateType string       `gorm:"type:varchar(50);not null"`
	Payload       []byte       `gorm:"not null"`
	Status        OutboxStatus `gorm:"type:varchar(20);not null;index"`
	RetryCount    int          `gorm:"not null;default:0"`
	MaxRetries    int          `gorm:"not null;default:5"`
	LastError     string       `gorm:"type:text"`
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OutboxEntry) TableName() string {
	return "outbox_entries"
}

// NewOutboxEntry wraps an already serialized event
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// retryBackoff is 1s after the first failure and doubles after each one
func retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return DefaultBaseBackoff << (attempt - 1)
}

func (e *OutboxEntry) transition(to OutboxStatus, now time.Time) {
	e.Status = to
	e.UpdatedAt = now
}

func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// MarkProcessing claims a pending or failed entry for delivery
func (e *OutboxEntry) MarkProcessing() error {
	switch e.Status {
	case OutboxStatusPending, OutboxStatusFailed:
		e.transition(OutboxStatusProcessing, time.Now())
		return nil
	default:
		return errOutboxNotClaimable
	}
}

func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.ProcessedAt = &now
	e.transition(OutboxStatusSent, now)
}

// MarkFailed records errMsg and either schedules the next attempt or, once
// MaxRetries failures have accumulated, moves the entry to DEAD
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg
	if e.RetryCount >= e.MaxRetries {
		e.NextRetryAt = nil
		e.transition(OutboxStatusDead, now)
		return
	}
	next := now.Add(retryBackoff(e.RetryCount))
	e.NextRetryAt = &next
	e.transition(OutboxStatusFailed, now)
}

// ResetForRetry puts a dead entry back in the queue with a fresh attempt budget
func (e *OutboxEntry) ResetForRetry() error {
	if !e.IsDead() {
		return errOutboxNotDead
	}
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.transition(OutboxStatusPending, time.Now())
	return nil
}

// OutboxRepository stores outbox entries
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable retrieves failed entries that are due for retry
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing atomically claims entries and returns the ones claimed
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteOlderThan deletes sent entries processed before the given time
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
