package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	ctx := t.Context()

	isNew, err := store.MarkProcessed(ctx, "order-placed-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "order-placed-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "second claim must fail")

	processed, err := store.IsProcessed(ctx, "order-placed-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	ctx := t.Context()

	_, err := store.MarkProcessed(ctx, "short", 10*time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "long", time.Hour)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	processed, err := store.IsProcessed(ctx, "short")
	require.NoError(t, err)
	assert.False(t, processed)

	store.cleanup()
	assert.Equal(t, 1, store.Size())

	isNew, err := store.MarkProcessed(ctx, "short", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "expired claims can be taken again")
}

func TestInMemoryIdempotencyStore_Forget(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	ctx := t.Context()

	_, err := store.MarkProcessed(ctx, "evt", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Forget(ctx, "evt"))
	require.NoError(t, store.Forget(ctx, "never-seen"))

	isNew, err := store.MarkProcessed(ctx, "evt", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	const workers = 50
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(t.Context(), "same", time.Hour)
			if err == nil && isNew {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fresh)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
