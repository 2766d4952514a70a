package kdtree

import (
	"github.com/google/uuid"

	"github.com/viant/domindex/index"
)

// Tree is an arena-backed binary partition tree over 2D points.
// The zero value is an empty tree ready for Build.
type Tree struct {
	nodes  map[string]*node
	root   string
	leaves int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.leaves }

// Empty reports whether the tree has no root.
func (t *Tree) Empty() bool { return t.root == "" }

// Point returns the point stored at the leaf id.
func (t *Tree) Point(id string) (index.Point, bool) {
	n, ok := t.nodes[id]
	if !ok || !n.isLeaf() {
		return index.Point{}, false
	}
	return n.point, true
}

// Contains reports whether id names a leaf.
func (t *Tree) Contains(id string) bool {
	_, ok := t.Point(id)
	return ok
}

func (t *Tree) reset() {
	t.nodes = make(map[string]*node)
	t.root = ""
	t.leaves = 0
}

// newKey returns a key for an internal node that does not clash with any
// leaf or internal key already in the arena.
func (t *Tree) newKey() string {
	for {
		key := uuid.NewString()
		if _, taken := t.nodes[key]; !taken {
			return key
		}
	}
}

// Ensure Tree satisfies the Index interface.
var _ index.Index = (*Tree)(nil)
