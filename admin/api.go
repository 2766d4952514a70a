package admin

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"modernc.org/sqlite/vtab"

	"github.com/viant/domindex/catalog"
	"github.com/viant/domindex/index"
	"github.com/viant/domindex/internal/logger"
	"github.com/viant/domindex/matcher"
	"github.com/viant/domindex/snapshot"
)

// Module provides administrative operations via a virtual table.
// Usage:
//
//	CREATE VIRTUAL TABLE dom_admin USING dom_admin(op);
//	SELECT op FROM dom_admin WHERE op MATCH 'catalog_points';            -- rebuild and persist the tree
//	SELECT op FROM dom_admin WHERE op MATCH 'match:catalog_points:2,8';  -- query the persisted tree
//
// A rebuild returns a single row op='indexed:<count>'. A match returns the
// nearest dominating id, or no row when nothing dominates the query.
type Module struct{ db *sql.DB }

type Table struct{ db *sql.DB }

type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

// Register installs the dom_admin module.
func Register(db *sql.DB) error {
	if err := vtab.RegisterModule(db, "dom_admin", &Module{db: db}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.declare(ctx, args)
}

func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.declare(ctx, args)
}

func (m *Module) declare(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("dom_admin: need at least 3 args")
	}
	// Single TEXT column `op` reporting results.
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op)", args[2])); err != nil {
		return nil, err
	}
	return &Table{db: m.db}, nil
}

func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 1
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error         { return nil }
func (t *Table) Destroy() error            { return nil }

func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	arg, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("dom_admin: MATCH expects TEXT")
	}
	rows, err := Exec(context.Background(), c.table.db, arg)
	if err != nil {
		return err
	}
	c.rows = rows
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("dom_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}

func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }
func (c *Cursor) Close() error          { c.rows = nil; c.pos = 0; return nil }

// Exec runs an admin operation and returns its result rows. op is either a
// catalog table name (rebuild) or match:<table>:<x>,<y>.
func Exec(ctx context.Context, db *sql.DB, op string) ([]string, error) {
	op = strings.TrimSpace(op)
	if rest, ok := strings.CutPrefix(op, "match:"); ok {
		table, coords, found := strings.Cut(rest, ":")
		if !found {
			return nil, fmt.Errorf("dom_admin: match expects match:<table>:<x>,<y>")
		}
		query, err := parsePoint(coords)
		if err != nil {
			return nil, err
		}
		id, ok, err := match(ctx, db, table, query)
		if err != nil || !ok {
			return nil, err
		}
		return []string{id}, nil
	}
	n, err := reindex(ctx, db, op)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("indexed:%d", n)}, nil
}

// reindex rebuilds and persists the kd-tree for the given catalog table under
// the table name, the snapshot a matcher for that catalog loads by default.
func reindex(ctx context.Context, db *sql.DB, table string) (int, error) {
	if table == "" {
		return 0, fmt.Errorf("dom_admin: empty catalog table")
	}
	store, err := catalog.NewStore(ctx, db, catalog.WithTable(table))
	if err != nil {
		return 0, err
	}
	snapshots, err := snapshot.NewSQLiteStore(ctx, db)
	if err != nil {
		return 0, err
	}
	svc, err := matcher.New(ctx, store, snapshots, matcher.WithLogger(logger.L()), matcher.WithChangeLog(true))
	if err != nil {
		return 0, err
	}
	if err := svc.Rebuild(ctx); err != nil {
		return 0, err
	}
	return svc.Len(), nil
}

func match(ctx context.Context, db *sql.DB, table string, query index.Point) (string, bool, error) {
	snapshots, err := snapshot.NewSQLiteStore(ctx, db)
	if err != nil {
		return "", false, err
	}
	tree, _, err := matcher.ReadSnapshot(ctx, snapshots, table)
	if err != nil {
		return "", false, err
	}
	id, ok := tree.Search(query)
	return id, ok, nil
}

// parsePoint parses "x,y".
func parsePoint(raw string) (index.Point, error) {
	var p index.Point
	parts := strings.Split(raw, ",")
	if len(parts) != index.Axes {
		return p, fmt.Errorf("dom_admin: point %q: want x,y", raw)
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return p, fmt.Errorf("dom_admin: point %q: %w", raw, err)
		}
		p[i] = float32(f)
	}
	return p, nil
}
