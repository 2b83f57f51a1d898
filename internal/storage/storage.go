package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found in storage")

// ObjectStorage is the object store used to archive exported state documents.
type ObjectStorage interface {
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error
	// GetObject returns ErrObjectNotFound for a missing key.
	GetObject(ctx context.Context, objectKey string) ([]byte, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}
