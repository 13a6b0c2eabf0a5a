package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by BlobStore.Get for a missing key.
	ErrNotFound = errors.New("store: key not found")
	// ErrPersistence wraps every read, write or decode failure reported by the Gateway.
	ErrPersistence = errors.New("store: persistence failure")
)

// BlobStore is a keyed byte store.
type BlobStore interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
