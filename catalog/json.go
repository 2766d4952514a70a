package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/viant/domindex/index"
)

// Record is a prepared catalog record: a named response function with its
// off and on output levels. RPUOff becomes axis 0 and RPUOn axis 1.
type Record struct {
	Name   string  `json:"name"`
	RPUOff float32 `json:"rpu_off"`
	RPUOn  float32 `json:"rpu_on"`
}

// Entry converts the record into an index entry.
func (r Record) Entry() index.Entry {
	return index.Entry{ID: r.Name, Point: index.Point{r.RPUOff, r.RPUOn}}
}

// LoadJSON reads a JSON array of records and returns them as entries in
// input order.
func LoadJSON(r io.Reader) ([]index.Entry, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("catalog: decode records: %w", err)
	}
	entries := make([]index.Entry, 0, len(records))
	for i, rec := range records {
		if rec.Name == "" {
			return nil, fmt.Errorf("catalog: record %d has no name: %w", i, index.ErrMalformedInput)
		}
		entries = append(entries, rec.Entry())
	}
	return entries, nil
}
