package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

var _ catalogapp.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage stands in for S3 when storage is disabled. It hands
// out fake URLs and treats every key as uploaded unless Deleted says
// otherwise, so the confirm flow works in development.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted map[string]bool
}

// NewStubObjectStorage creates a stub serving URLs under storage.example.com
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		deleted: make(map[string]bool),
	}
}

func (s *StubObjectStorage) url(action, key string, expiresAt time.Time) string {
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return strings.TrimRight(s.BaseURL, "/") + "/" + action + "/" + key + "?" + q.Encode()
}

// PresignUpload returns a fake upload URL
func (s *StubObjectStorage) PresignUpload(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	s.mu.Lock()
	delete(s.deleted, key)
	s.mu.Unlock()

	expiresAt := time.Now().Add(expiresIn)
	return s.url("upload", key, expiresAt), expiresAt, nil
}

// PresignDownload returns a fake download URL
func (s *StubObjectStorage) PresignDownload(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.url("download", key, expiresAt), expiresAt, nil
}

// DeleteObject marks key as gone
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	s.deleted[key] = true
	s.mu.Unlock()
	return nil
}

// ObjectExists is true for every key not deleted since its last upload URL
func (s *StubObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.deleted[key], nil
}
