package catalog

import (
	"context"
	"fmt"

	"github.com/viant/domindex/index"
)

// Dominators scans the catalog in SQL for points dominated by query, nearest
// first. It requires the dom_dominates and dom_l2 functions
// (engine.RegisterDominanceFunctions) and is available on SQLite only. A
// limit <= 0 returns every match.
func (s *Store) Dominators(ctx context.Context, query index.Point, limit int) ([]string, error) {
	if s.dialect != SQLite {
		return nil, fmt.Errorf("catalog: dominator scan requires SQLite")
	}
	if limit <= 0 {
		limit = -1
	}
	stmt := fmt.Sprintf(`SELECT id FROM %s
WHERE dom_dominates(?, ?, x, y) = 1
ORDER BY dom_l2(?, ?, x, y), id
LIMIT ?`, s.table)
	qx, qy := float64(query[0]), float64(query[1])
	rows, err := s.db.QueryContext(ctx, stmt, qx, qy, qx, qy, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
