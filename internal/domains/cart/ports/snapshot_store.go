package ports

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound indicates no value is stored under the key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore is a durable get/set-by-key string store scoped to a client installation.
type SnapshotStore interface {
	// Get returns the stored value or ErrSnapshotNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
