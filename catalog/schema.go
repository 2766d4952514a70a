package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultTable is the catalog table name used when none is configured.
const DefaultTable = "catalog_points"

// TableDDL returns the DDL for a catalog table. Coordinates are REAL, which is
// single precision on Postgres and matches the index point type.
func TableDDL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
    id TEXT PRIMARY KEY,
    x  REAL NOT NULL,
    y  REAL NOT NULL
);`
}

// EnsureSchema creates the catalog table in the provided database if it does
// not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if db == nil {
		return fmt.Errorf("catalog: db is nil")
	}
	_, err := db.ExecContext(ctx, TableDDL(table))
	return err
}
