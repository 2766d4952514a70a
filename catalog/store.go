package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/domindex/index"
)

// Store is a SQL-backed point catalog.
type Store struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

// Option configures a Store.
type Option func(*Store)

// WithTable sets the catalog table name. The name is interpolated into SQL
// and must be trusted.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = table
		}
	}
}

// WithDialect sets the SQL dialect; the default is SQLite.
func WithDialect(d Dialect) Option {
	return func(s *Store) { s.dialect = d }
}

// NewStore creates a catalog store and ensures its table exists.
func NewStore(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog: db is nil")
	}
	s := &Store{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	if err := EnsureSchema(ctx, db, s.table); err != nil {
		return nil, err
	}
	return s, nil
}

// Table returns the catalog table name.
func (s *Store) Table() string { return s.table }

// Dialect returns the configured SQL dialect.
func (s *Store) Dialect() Dialect { return s.dialect }

// AddPoints inserts entries in a single transaction.
func (s *Store) AddPoints(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s(id, x, y) VALUES(%s, %s, %s)`, s.table,
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("catalog: entry id must be set: %w", index.ErrMalformedInput)
		}
		if !e.Point.Valid() {
			return fmt.Errorf("catalog: entry %q has non-finite point %v: %w", e.ID, e.Point, index.ErrMalformedInput)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, float64(e.Point[0]), float64(e.Point[1])); err != nil {
			return fmt.Errorf("catalog: insert %q: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Entries returns every cataloged point ordered by id.
func (s *Store) Entries(ctx context.Context) ([]index.Entry, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, x, y FROM %s ORDER BY id`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []index.Entry
	for rows.Next() {
		var id string
		var x, y float64
		if err := rows.Scan(&id, &x, &y); err != nil {
			return nil, err
		}
		out = append(out, index.Entry{ID: id, Point: index.Point{float32(x), float32(y)}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes a point by id. It returns index.ErrNotFound when no row
// matched.
func (s *Store) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("catalog: Remove called with empty id")
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, s.table, s.dialect.placeholder(1)), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("catalog: remove %q: %w", id, index.ErrNotFound)
	}
	return nil
}

// Count returns the number of cataloged points.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n)
	return n, err
}
