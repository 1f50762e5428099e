// Package storage persists board state as JSON blobs in a key-value store.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrBlobNotFound is returned by a BlobStore when a key has no value
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the key-value contract every backend implements
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// PersistenceError wraps a backend failure with the operation and key involved
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
