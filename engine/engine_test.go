package engine

import (
	"path/filepath"
	"testing"
)

// TestOpenFile verifies that a file-backed SQLite database keeps rows across
// connections opened with the modernc.org/sqlite driver.
func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	if _, err := db.Exec("CREATE TABLE t(x REAL, y REAL)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t(x, y) VALUES (1, 2), (3, 4)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("COUNT failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("COUNT = %d, want 2", n)
	}
}

// TestOpenPostgresIsLazy verifies that OpenPostgres only prepares a handle;
// no connection is attempted until the first query.
func TestOpenPostgresIsLazy(t *testing.T) {
	db, err := OpenPostgres("postgres://nobody@127.0.0.1:1/none?sslmode=disable")
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 8 {
		t.Fatalf("MaxOpenConnections = %d, want 8", got)
	}
}
