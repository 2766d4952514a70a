package kdtree

import (
	"fmt"

	"modernc.org/mathutil"

	"github.com/viant/domindex/index"
)

// Walk visits leaves depth first, less side before more side, passing each
// leaf id, point and depth. Walk stops early when fn returns false.
func (t *Tree) Walk(fn func(id string, point index.Point, depth int) bool) {
	if t.root == "" {
		return
	}
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(key string, depth int, fn func(string, index.Point, int) bool) bool {
	n := t.nodes[key]
	if n.isLeaf() {
		return fn(key, n.point, depth)
	}
	return t.walk(n.less, depth+1, fn) && t.walk(n.more, depth+1, fn)
}

// IDs returns leaf ids in walk order.
func (t *Tree) IDs() []string {
	ids := make([]string, 0, t.leaves)
	t.Walk(func(id string, _ index.Point, _ int) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Entries returns the cataloged entries in walk order.
func (t *Tree) Entries() []index.Entry {
	entries := make([]index.Entry, 0, t.leaves)
	t.Walk(func(id string, point index.Point, _ int) bool {
		entries = append(entries, index.Entry{ID: id, Point: point})
		return true
	})
	return entries
}

// Height returns the depth of the deepest leaf, or -1 for an empty tree.
// Removals can only shorten paths, so Height never exceeds the height the
// tree had when it was built.
func (t *Tree) Height() int {
	height := -1
	t.Walk(func(_ string, _ index.Point, depth int) bool {
		height = max(height, depth)
		return true
	})
	return height
}

// BalancedHeight is the height Build produces for n entries: the larger half
// of every split holds ceil(n/2) entries.
func BalancedHeight(n int) int {
	if n <= 0 {
		return -1
	}
	return mathutil.BitLen(n - 1)
}

// Validate checks the structural invariants: the tree is empty iff it has no
// root, every internal node has two children that point back at it, every
// node is reachable from the root exactly once, and the leaf count matches.
// Keys must be non-empty and leaf points finite.
func (t *Tree) Validate() error {
	for key, n := range t.nodes {
		if key == "" {
			return fmt.Errorf("kdtree: empty node key")
		}
		if n.isLeaf() && !n.point.Valid() {
			return fmt.Errorf("kdtree: leaf %q has non-finite point %v", key, n.point)
		}
	}
	if t.root == "" {
		if len(t.nodes) != 0 {
			return fmt.Errorf("kdtree: %d nodes without root", len(t.nodes))
		}
		if t.leaves != 0 {
			return fmt.Errorf("kdtree: leaf count %d without root", t.leaves)
		}
		return nil
	}
	root, ok := t.nodes[t.root]
	if !ok {
		return fmt.Errorf("kdtree: root %q missing", t.root)
	}
	if root.parent != "" {
		return fmt.Errorf("kdtree: root %q has parent %q", t.root, root.parent)
	}
	seen := make(map[string]struct{}, len(t.nodes))
	leaves := 0
	stack := []string{t.root}
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[key]; dup {
			return fmt.Errorf("kdtree: node %q reached twice", key)
		}
		seen[key] = struct{}{}
		n := t.nodes[key]
		switch n.kind {
		case leafKind:
			leaves++
		case internalKind:
			for _, child := range []string{n.less, n.more} {
				c, ok := t.nodes[child]
				if !ok {
					return fmt.Errorf("kdtree: node %q has missing child %q", key, child)
				}
				if c.parent != key {
					return fmt.Errorf("kdtree: child %q of %q has parent %q", child, key, c.parent)
				}
				stack = append(stack, child)
			}
		default:
			return fmt.Errorf("kdtree: node %q has kind %v", key, n.kind)
		}
	}
	if len(seen) != len(t.nodes) {
		return fmt.Errorf("kdtree: %d of %d nodes unreachable", len(t.nodes)-len(seen), len(t.nodes))
	}
	if leaves != t.leaves {
		return fmt.Errorf("kdtree: leaf count %d, want %d", t.leaves, leaves)
	}
	return nil
}
