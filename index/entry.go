package index

import "fmt"

// Entry pairs a catalog identifier with its point.
type Entry struct {
	ID    string
	Point Point
}

// CheckEntries validates build input: it must be non-empty, every id must be
// set and unique, and every point finite. Failures wrap ErrMalformedInput.
func CheckEntries(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no entries: %w", ErrMalformedInput)
	}
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d has empty id: %w", i, ErrMalformedInput)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate id %q: %w", e.ID, ErrMalformedInput)
		}
		if !e.Point.Valid() {
			return fmt.Errorf("id %q has non-finite point %v: %w", e.ID, e.Point, ErrMalformedInput)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
