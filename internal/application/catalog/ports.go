package catalog

import (
	"context"
	"time"
)

// Slugger derives URL slugs from titles
type Slugger interface {
	Make(title string) string
}

// ProductCache stores encoded product responses
type ProductCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, keys ...string)
}

// ObjectStorage is the object store holding product images
type ObjectStorage interface {
	// PresignUpload returns a URL the client PUTs the file to
	PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// PresignDownload returns a time-limited GET URL
	PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	DeleteObject(ctx context.Context, key string) error
}
