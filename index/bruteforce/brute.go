package bruteforce

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viant/domindex/index"
)

const magic = "DOMB"

// Index is a simple dominance index that answers queries by scanning every
// cataloged point.
type Index struct {
	ids    []string
	points []index.Point
	pos    map[string]int
}

// Build loads entries. The index must be empty.
func (i *Index) Build(entries []index.Entry) error {
	if len(i.ids) > 0 {
		return fmt.Errorf("bruteforce: build: %w", index.ErrAlreadyBuilt)
	}
	if err := index.CheckEntries(entries); err != nil {
		return fmt.Errorf("bruteforce: build: %w", err)
	}
	i.ids = make([]string, len(entries))
	i.points = make([]index.Point, len(entries))
	i.pos = make(map[string]int, len(entries))
	for j, e := range entries {
		i.ids[j] = e.ID
		i.points[j] = e.Point
		i.pos[e.ID] = j
	}
	return nil
}

// Search returns the closest point dominated by query.
func (i *Index) Search(query index.Point) (string, bool) {
	best := -1
	var bestDist float32
	for j, p := range i.points {
		if !index.Dominates(query, p) {
			continue
		}
		d := index.Distance(query, p)
		if best < 0 || d < bestDist {
			best, bestDist = j, d
		}
	}
	if best < 0 {
		return "", false
	}
	return i.ids[best], true
}

// Matches returns every cataloged id dominated by query, in catalog order.
func (i *Index) Matches(query index.Point) []string {
	var out []string
	for j, p := range i.points {
		if index.Dominates(query, p) {
			out = append(out, i.ids[j])
		}
	}
	return out
}

// Remove deletes id by moving the last entry into its slot.
func (i *Index) Remove(id string) error {
	if len(i.ids) == 0 {
		return fmt.Errorf("bruteforce: remove %q: %w", id, index.ErrEmptyTree)
	}
	j, ok := i.pos[id]
	if !ok {
		return fmt.Errorf("bruteforce: remove %q: %w", id, index.ErrNotFound)
	}
	last := len(i.ids) - 1
	if j != last {
		i.ids[j] = i.ids[last]
		i.points[j] = i.points[last]
		i.pos[i.ids[j]] = j
	}
	i.ids = i.ids[:last]
	i.points = i.points[:last]
	delete(i.pos, id)
	return nil
}

// Len returns the number of cataloged entries.
func (i *Index) Len() int { return len(i.ids) }

// MarshalBinary stores: magic, n(uint32), then for each entry:
// idLen(uint32), id bytes, point(float32[2]).
func (i *Index) MarshalBinary() ([]byte, error) {
	size := len(magic) + 4
	for _, id := range i.ids {
		size += 4 + len(id) + 4*index.Axes
	}
	out := make([]byte, 0, size)
	putU32 := func(v uint32) { out = binary.LittleEndian.AppendUint32(out, v) }
	out = append(out, magic...)
	putU32(uint32(len(i.ids)))
	for idx, id := range i.ids {
		putU32(uint32(len(id)))
		out = append(out, id...)
		for _, v := range i.points[idx] {
			putU32(math.Float32bits(v))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < len(magic)+4 || string(data[:len(magic)]) != magic {
		return fmt.Errorf("bruteforce: invalid data: %w", index.ErrMalformedInput)
	}
	off := len(magic)
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(data[off : off+4]); off += 4; return v }
	n := int(getU32())
	entries := make([]index.Entry, 0, min(n, len(data)))
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return truncated("entry")
		}
		idlen := int(getU32())
		if off+idlen > len(data) {
			return truncated("id")
		}
		e := index.Entry{ID: string(data[off : off+idlen])}
		off += idlen
		if off+4*index.Axes > len(data) {
			return truncated("point")
		}
		for a := range e.Point {
			e.Point[a] = math.Float32frombits(getU32())
		}
		entries = append(entries, e)
	}
	*i = Index{}
	if len(entries) == 0 {
		return nil
	}
	return i.Build(entries)
}

func truncated(what string) error {
	return fmt.Errorf("bruteforce: truncated %s: %w", what, index.ErrMalformedInput)
}

// Ensure Index satisfies the Index interface.
var _ index.Index = (*Index)(nil)
