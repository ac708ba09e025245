package store

import (
	"context"
)

// ObjectInfo describes one stored artifact. Metadata keys are normalized to
// lowercase so callers can look up idempotency fields regardless of how the
// backend canonicalizes header names.
type ObjectInfo struct {
	Key      string
	Size     int64
	Metadata map[string]string
}

// ObjectStore is the bucket-scoped collaborator the pipeline reads sources
// from and writes artifacts to. Implementations classify backend failures
// into the sentinel errors of this package so the retry layer can tell
// transient faults from fatal ones.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error
	ListObjects(ctx context.Context, prefix string, max int) ([]string, error)
	StatObject(ctx context.Context, key string) (ObjectInfo, error)
	Bucket() string
}
