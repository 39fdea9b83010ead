package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKey(t *testing.T) {
	a := Key("product", "slug", "blue-shirt")
	b := Key("product", "slug", "blue-shirt")
	c := Key("product", "slugblue", "-shirt")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "parts are separated before hashing")
	assert.Regexp(t, `^product:[0-9a-f]{16}$`, a)
}

func TestETag(t *testing.T) {
	etag := ETag([]byte(`{"id":1}`))
	assert.Regexp(t, `^"[0-9a-f]{16}"$`, etag)
	assert.Equal(t, etag, ETag([]byte(`{"id":1}`)))
	assert.NotEqual(t, etag, ETag([]byte(`{"id":2}`)))
}

func TestMatchETag(t *testing.T) {
	etag := `"00000000000000ff"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{`W/` + etag, true},
		{`"abc", ` + etag, true},
		{`"abc"`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchETag(tt.header, etag), "header %q", tt.header)
	}
}

func TestInMemoryCache(t *testing.T) {
	c := NewInMemoryCache(time.Hour)
	t.Cleanup(func() { _ = c.Close() })
	ctx := t.Context()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"))
	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	c.Delete(ctx, "k")
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache(10 * time.Millisecond)
	t.Cleanup(func() { _ = c.Close() })

	c.Set(t.Context(), "k", []byte("v"))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(t.Context(), "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

type fakeInvalidator struct {
	mu        sync.Mutex
	published [][]string
	incoming  chan []string
	err       error
}

func (f *fakeInvalidator) Publish(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, keys)
	return f.err
}

func (f *fakeInvalidator) Subscribe(ctx context.Context, fn func(keys []string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case keys := <-f.incoming:
			fn(keys)
		}
	}
}

func (f *fakeInvalidator) Close() error { return nil }

func newTiered(t *testing.T) (*TieredCache, *InMemoryCache, *InMemoryCache, *fakeInvalidator) {
	t.Helper()
	l1 := NewInMemoryCache(time.Minute)
	l2 := NewInMemoryCache(time.Hour)
	inv := &fakeInvalidator{incoming: make(chan []string)}
	c := NewTieredCache(l1, l2, inv, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c, l1, l2, inv
}

func TestTieredCache_ReadThrough(t *testing.T) {
	c, l1, l2, _ := newTiered(t)
	ctx := t.Context()

	l2.Set(ctx, "product:1", []byte("p1"))

	v, ok := c.Get(ctx, "product:1")
	require.True(t, ok)
	assert.Equal(t, []byte("p1"), v)

	v, ok = l1.Get(ctx, "product:1")
	require.True(t, ok, "an L2 hit fills L1")
	assert.Equal(t, []byte("p1"), v)
}

func TestTieredCache_SetAndDelete(t *testing.T) {
	c, l1, l2, inv := newTiered(t)
	ctx := t.Context()

	c.Set(ctx, "product:1", []byte("p1"))
	_, ok := l1.Get(ctx, "product:1")
	assert.True(t, ok)
	_, ok = l2.Get(ctx, "product:1")
	assert.True(t, ok)

	c.Delete(ctx, "product:1")
	_, ok = c.Get(ctx, "product:1")
	assert.False(t, ok)
	assert.Equal(t, [][]string{{"product:1"}}, inv.published)
}

func TestTieredCache_DeleteSurvivesPublishFailure(t *testing.T) {
	c, _, _, inv := newTiered(t)
	inv.err = errors.New("redis down")

	c.Set(t.Context(), "k", []byte("v"))
	c.Delete(t.Context(), "k")

	_, ok := c.Get(t.Context(), "k")
	assert.False(t, ok)
}

func TestTieredCache_Listen(t *testing.T) {
	c, l1, l2, inv := newTiered(t)
	ctx, cancel := context.WithCancel(t.Context())

	l1.Set(ctx, "product:1", []byte("stale"))
	l2.Set(ctx, "product:1", []byte("fresh"))

	done := make(chan error, 1)
	go func() { done <- c.Listen(ctx) }()

	inv.incoming <- []string{"product:1"}
	assert.Eventually(t, func() bool {
		v, ok := c.Get(ctx, "product:1")
		return ok && string(v) == "fresh"
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
