package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dori/kanbo/internal/storage"
)

var _ storage.BlobStore = (*DB)(nil)

// Get returns the blob stored under key
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put inserts or replaces the blob stored under key
func (db *DB) Put(ctx context.Context, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	return err
}

// Delete removes the blob stored under key. Missing keys are not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	return err
}
