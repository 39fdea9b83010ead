package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrEntryNotDead is returned when retrying an entry that is not in the dead letter state
var ErrEntryNotDead = shared.NewDomainError("INVALID_STATE", "Only dead letter entries can be retried")

// OutboxService exposes the transactional outbox to administrators
type OutboxService struct {
	repo    shared.OutboxRepository
	trigger func()
	logger  *zap.Logger
}

// NewOutboxService creates a new outbox service. trigger wakes the outbox
// processor after entries are requeued and may be nil.
func NewOutboxService(repo shared.OutboxRepository, trigger func(), logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, trigger: trigger, logger: logger}
}

// OutboxEntryResponse represents an outbox entry in API responses
type OutboxEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type" example:"OrderPlaced"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type" example:"Order"`
	Status        string     `json:"status" example:"DEAD"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OutboxStatsResponse counts outbox entries per status
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// DeadLetterFilter pages through dead letter entries
type DeadLetterFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListDeadLetters returns a page of entries that exhausted their retries
func (s *OutboxService) ListDeadLetters(ctx context.Context, f DeadLetterFilter) (*shared.Paginated[OutboxEntryResponse], error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize()
	entries, total, err := s.repo.FindDead(ctx, filter.Page, filter.PageSize)
	if err != nil {
		return nil, err
	}
	items := make([]OutboxEntryResponse, len(entries))
	for i, entry := range entries {
		items[i] = toOutboxEntryResponse(entry)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetEntry returns a single outbox entry
func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RetryDeadEntry puts a dead letter entry back in the pending queue
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, ErrEntryNotDead
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("dead letter entry requeued",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType))
	s.wake()

	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RetryAllDeadEntries requeues every dead letter entry and returns how many were requeued
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	const batch = 100
	var count int64

	// requeued entries leave the dead set, so the first page is always the next batch
	for {
		entries, _, err := s.repo.FindDead(ctx, 1, batch)
		if err != nil {
			return count, err
		}
		requeued := 0
		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("failed to requeue outbox entry",
					zap.String("id", entry.ID.String()), zap.Error(err))
				continue
			}
			requeued++
		}
		count += int64(requeued)
		if len(entries) < batch || requeued == 0 {
			break
		}
	}

	s.logger.Info("dead letter entries requeued", zap.Int64("count", count))
	if count > 0 {
		s.wake()
	}
	return count, nil
}

// Stats counts entries per status
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &OutboxStatsResponse{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func (s *OutboxService) wake() {
	if s.trigger != nil {
		s.trigger()
	}
}

func toOutboxEntryResponse(entry *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
	}
}

