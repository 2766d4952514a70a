package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const storageSchema = `
CREATE TABLE IF NOT EXISTS index_storage (
    name       TEXT PRIMARY KEY,
    "index"    BLOB,
    updated_at INTEGER NOT NULL
);
`

// EnsureStorage creates the index_storage table if it does not exist.
func EnsureStorage(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("snapshot: db is nil")
	}
	_, err := db.ExecContext(ctx, storageSchema)
	return err
}

// SQLiteStore keeps snapshots in the index_storage table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed Store and ensures its table exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if err := EnsureStorage(ctx, db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the snapshot.
func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("snapshot: empty name")
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO index_storage(name, "index", updated_at) VALUES(?, ?, ?)`,
		name, data, time.Now().Unix())
	return err
}

// Load returns the stored snapshot.
func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT "index" FROM index_storage WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// Delete removes the snapshot.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM index_storage WHERE name = ?`, name)
	return err
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
