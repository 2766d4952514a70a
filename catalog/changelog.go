package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Change operations recorded in the change log.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change mirrors a single row of the catalog change log.
type Change struct {
	Seq       int64
	Op        string
	PointID   string
	CreatedAt time.Time
}

// LogTable returns the change-log table name for a catalog table.
func LogTable(table string) string {
	return sanitizeIdentifier(table) + "_log"
}

// LogTableDDL returns the DDL for a catalog change log. created_at holds unix
// seconds.
func LogTableDDL(logTable string) string {
	return `CREATE TABLE IF NOT EXISTS ` + logTable + ` (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    op         TEXT NOT NULL,
    point_id   TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);`
}

// SQLiteChangeLogTriggers returns the trigger DDL statements required to
// capture inserts, updates, and deletes against a catalog table into its
// change log using SQLite syntax.
func SQLiteChangeLogTriggers(table, logTable string) []string {
	base := sanitizeIdentifier(table)
	trigger := func(suffix, event, op, alias string) string {
		return fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_%s AFTER %s ON %s
BEGIN
    INSERT INTO %s(op, point_id) VALUES ('%s', %s.id);
END;`, base, suffix, event, table, logTable, op, alias)
	}
	return []string{
		trigger("ai", "INSERT", OpInsert, "NEW"),
		trigger("au", "UPDATE", OpUpdate, "NEW"),
		trigger("ad", "DELETE", OpDelete, "OLD"),
	}
}

// EnsureChangeLog creates the change-log table and triggers. Only SQLite
// catalogs are supported.
func (s *Store) EnsureChangeLog(ctx context.Context) error {
	if s.dialect != SQLite {
		return fmt.Errorf("catalog: change log not supported for %v", s.dialect)
	}
	logTable := LogTable(s.table)
	stmts := append([]string{LogTableDDL(logTable)}, SQLiteChangeLogTriggers(s.table, logTable)...)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Changes returns up to limit change-log rows with seq greater than after,
// in seq order. A non-positive limit returns all of them.
func (s *Store) Changes(ctx context.Context, after int64, limit int) ([]Change, error) {
	query := fmt.Sprintf(`SELECT seq, op, point_id, created_at FROM %s WHERE seq > ? ORDER BY seq`, LogTable(s.table))
	args := []interface{}{after}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var c Change
		var created int64
		if err := rows.Scan(&c.Seq, &c.Op, &c.PointID, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(created, 0)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LastSeq returns the highest change-log seq, or 0 when the log is empty.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(seq), 0) FROM %s`, LogTable(s.table))).Scan(&seq)
	return seq, err
}

func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return replacer.Replace(name)
}
