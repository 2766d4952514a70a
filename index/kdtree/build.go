package kdtree

import (
	"fmt"
	"sort"

	"github.com/viant/domindex/index"
)

// Build partitions entries recursively and populates the tree. The tree must
// be empty; build a fresh Tree instead of rebuilding a populated one.
func (t *Tree) Build(entries []index.Entry) error {
	if t.root != "" || len(t.nodes) > 0 {
		return fmt.Errorf("kdtree: build: %w", index.ErrAlreadyBuilt)
	}
	if err := index.CheckEntries(entries); err != nil {
		return fmt.Errorf("kdtree: build: %w", err)
	}
	if t.nodes == nil {
		t.nodes = make(map[string]*node, 2*len(entries))
	}
	// leaves are seated first so internal keys never shadow an id
	for _, e := range entries {
		t.nodes[e.ID] = newLeaf(e.Point, "")
	}
	arr := append([]index.Entry(nil), entries...)
	t.root = t.build(arr, 0, "")
	t.leaves = len(entries)
	return nil
}

// build stores the subtree for arr under parent and returns its key.
func (t *Tree) build(arr []index.Entry, depth int, parent string) string {
	n := len(arr)
	if n == 1 {
		t.nodes[arr[0].ID].parent = parent
		return arr[0].ID
	}
	axis := depth % index.Axes
	sort.SliceStable(arr, func(i, j int) bool { return arr[i].Point[axis] < arr[j].Point[axis] })
	mid := n / 2
	divider := midpoint(arr[mid-1].Point[axis], arr[mid].Point[axis])

	key := t.newKey()
	internal := newInternal(divider, parent)
	t.nodes[key] = internal
	internal.less = t.build(arr[:mid], depth+1, key)
	internal.more = t.build(arr[mid:], depth+1, key)
	return key
}

// midpoint returns the mean of a <= b. Halving first keeps it finite near
// the float32 limits, and rounding keeps it within [a, b].
func midpoint(a, b float32) float32 {
	return a/2 + b/2
}
