package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no snapshot is stored under the name.
var ErrNotFound = errors.New("snapshot: not found")

// Store saves and loads named index snapshots.
type Store interface {
	// Save stores data under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, data []byte) error

	// Load returns the snapshot stored under name or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes the snapshot stored under name. Deleting a missing
	// snapshot is not an error.
	Delete(ctx context.Context, name string) error
}
