package engine

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	sqlite "modernc.org/sqlite"

	"github.com/viant/domindex/index"
)

// RegisterDominanceFunctions registers dom_dominates and dom_l2 with the
// driver so they are available on new connections opened after this call.
//
//	dom_dominates(qx, qy, x, y) -> 1 when (qx, qy) dominates (x, y), else 0
//	dom_l2(qx, qy, x, y)        -> Euclidean distance between the two points
//
// Note: existing open connections will not see new functions.
func RegisterDominanceFunctions(_ *sql.DB) error {
	// Idempotent registration; driver rejects duplicates but we ignore errors silently here.
	_ = sqlite.RegisterDeterministicScalarFunction("dom_dominates", 4, domDominatesImpl)
	_ = sqlite.RegisterDeterministicScalarFunction("dom_l2", 4, domL2Impl)
	return nil
}

func asFloat(arg driver.Value) (float32, bool, error) {
	switch v := arg.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return float32(v), true, nil
	case int64:
		return float32(v), true, nil
	default:
		return 0, false, fmt.Errorf("dom: unsupported argument type %T; want REAL", arg)
	}
}

// asPoints decodes (qx, qy, x, y); ok is false when any argument is NULL.
func asPoints(name string, args []driver.Value) (query, point index.Point, ok bool, err error) {
	if len(args) != 4 {
		return query, point, false, fmt.Errorf("%s: expected 4 arguments, got %d", name, len(args))
	}
	var coords [4]float32
	for i, arg := range args {
		v, present, err := asFloat(arg)
		if err != nil {
			return query, point, false, fmt.Errorf("%s: %w", name, err)
		}
		if !present {
			return query, point, false, nil
		}
		coords[i] = v
	}
	return index.Point{coords[0], coords[1]}, index.Point{coords[2], coords[3]}, true, nil
}

func domDominatesImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	query, point, ok, err := asPoints("dom_dominates", args)
	if err != nil || !ok {
		return nil, err
	}
	if index.Dominates(query, point) {
		return int64(1), nil
	}
	return int64(0), nil
}

func domL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	query, point, ok, err := asPoints("dom_l2", args)
	if err != nil || !ok {
		return nil, err
	}
	return float64(index.Distance(query, point)), nil
}
