package ports

import (
	"context"
)

// BlobStore is the remote object store holding serialized model artifacts.
// GetObject must return an error matching domain.ErrBlobNotFound when the key
// does not exist, so callers can tell a missing artifact from a transport
// failure.
type BlobStore interface {
	// Put stores data under a freshly generated id and returns that id.
	Put(ctx context.Context, data []byte) (string, error)
	PutObject(ctx context.Context, key string, data []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	HeadObject(ctx context.Context, key string) (bool, error)
}
