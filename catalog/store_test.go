package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/viant/domindex/engine"
	"github.com/viant/domindex/index"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	// a single connection keeps the in-memory database alive across calls
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	store, err := NewStore(context.Background(), db)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func reference() []index.Entry {
	return []index.Entry{
		{ID: "1", Point: index.Point{4, 6}},
		{ID: "2", Point: index.Point{8, 4}},
		{ID: "3", Point: index.Point{10, 5}},
		{ID: "4", Point: index.Point{12, 8}},
	}
}

// TestStore_AddEntriesRemove exercises inserting catalog points, reading them
// back, and removing one.
func TestStore_AddEntriesRemove(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.AddPoints(ctx, reference()); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Entries returned %d, want 4", len(entries))
	}
	for i, want := range reference() {
		if entries[i] != want {
			t.Fatalf("entries[%d] = %+v, want %+v", i, entries[i], want)
		}
	}

	if err := store.Remove(ctx, "2"); err != nil {
		t.Fatalf("Remove(2) failed: %v", err)
	}
	if n, err := store.Count(ctx); err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3, nil", n, err)
	}
	if err := store.Remove(ctx, "2"); !errors.Is(err, index.ErrNotFound) {
		t.Fatalf("Remove(2) again = %v, want ErrNotFound", err)
	}
}

func TestStore_AddPointsRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	err := store.AddPoints(ctx, []index.Entry{
		{ID: "a", Point: index.Point{1, 1}},
		{ID: "a", Point: index.Point{2, 2}},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("Count() = %d after failed insert, want 0 (rolled back)", n)
	}
}

func TestStore_ChangeLog(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.EnsureChangeLog(ctx); err != nil {
		t.Fatalf("EnsureChangeLog failed: %v", err)
	}
	if err := store.AddPoints(ctx, reference()[:2]); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	last, err := store.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq failed: %v", err)
	}
	if last != 2 {
		t.Fatalf("LastSeq() = %d, want 2", last)
	}
	if err := store.Remove(ctx, "1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	changes, err := store.Changes(ctx, last, 0)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("Changes returned %d rows, want 1", len(changes))
	}
	if changes[0].Op != OpDelete || changes[0].PointID != "1" || changes[0].Seq != 3 {
		t.Fatalf("unexpected change %+v", changes[0])
	}
	if changes[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
	all, err := store.Changes(ctx, 0, 2)
	if err != nil {
		t.Fatalf("Changes(limit) failed: %v", err)
	}
	if len(all) != 2 || all[0].Op != OpInsert {
		t.Fatalf("Changes(0, 2) = %+v", all)
	}
}

func TestSQLiteChangeLogTriggers(t *testing.T) {
	trigs := SQLiteChangeLogTriggers("main.catalog_points", "catalog_points_log")
	if len(trigs) != 3 {
		t.Fatalf("expected 3 triggers, got %d", len(trigs))
	}
	if !strings.Contains(trigs[0], "CREATE TRIGGER IF NOT EXISTS main_catalog_points_ai AFTER INSERT") {
		t.Fatalf("unexpected insert trigger: %s", trigs[0])
	}
	if !strings.Contains(trigs[1], "'update', NEW.id") {
		t.Fatalf("update trigger missing op: %s", trigs[1])
	}
	if !strings.Contains(trigs[2], "'delete', OLD.id") {
		t.Fatalf("delete trigger missing OLD reference: %s", trigs[2])
	}
}

func TestStore_ChangeLogPostgresUnsupported(t *testing.T) {
	db, err := engine.OpenPostgres("postgres://nobody@127.0.0.1:1/none?sslmode=disable")
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer db.Close()
	store := &Store{db: db, table: DefaultTable, dialect: Postgres}
	if err := store.EnsureChangeLog(context.Background()); err == nil {
		t.Fatalf("expected change log to be rejected for postgres")
	}
}

func TestDialect_Placeholder(t *testing.T) {
	if got := SQLite.placeholder(3); got != "?" {
		t.Fatalf("SQLite placeholder = %q", got)
	}
	if got := Postgres.placeholder(3); got != "$3" {
		t.Fatalf("Postgres placeholder = %q", got)
	}
}
