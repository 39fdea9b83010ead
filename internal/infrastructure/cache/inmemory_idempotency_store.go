package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps handled event IDs in process memory. Only
// correct for a single instance; the redis store covers multi-instance
// deployments.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewInMemoryIdempotencyStore starts a sweeper that drops expired IDs until Close
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.sweep(ctx)
	return s
}

func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.expires[eventID]; ok && now.Before(until) {
		return false, nil
	}
	s.expires[eventID] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	until, ok := s.expires[eventID]
	s.mu.RUnlock()
	return ok && time.Now().Before(until), nil
}

func (s *InMemoryIdempotencyStore) Forget(_ context.Context, eventID string) error {
	s.mu.Lock()
	delete(s.expires, eventID)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Calling it again is a no-op.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweep(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, until := range s.expires {
		if !now.Before(until) {
			delete(s.expires, id)
		}
	}
}

// Size reports how many IDs are held, expired ones included until the next sweep
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
