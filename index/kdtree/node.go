package kdtree

import "github.com/viant/domindex/index"

type kind uint8

const (
	leafKind kind = iota + 1
	internalKind
)

func (k kind) String() string {
	switch k {
	case leafKind:
		return "leaf"
	case internalKind:
		return "internal"
	default:
		return "unknown"
	}
}

// node is a tagged arena entry. Leaves use point; internal nodes use
// divider, less and more. An empty parent means the node is the root.
type node struct {
	kind    kind
	parent  string
	point   index.Point
	divider float32
	less    string
	more    string
}

func newLeaf(point index.Point, parent string) *node {
	return &node{kind: leafKind, point: point, parent: parent}
}

func newInternal(divider float32, parent string) *node {
	return &node{kind: internalKind, divider: divider, parent: parent}
}

func (n *node) isLeaf() bool { return n.kind == leafKind }

// sides returns the forward and reverse child for the given axis. Axis 0
// grows toward dominators, so the forward side is less; axis 1 shrinks toward
// them, so the forward side is more.
func (n *node) sides(axis int) (forward, reverse string) {
	if axis == 0 {
		return n.less, n.more
	}
	return n.more, n.less
}

// sibling returns the child of n that is not key.
func (n *node) sibling(key string) string {
	if n.less == key {
		return n.more
	}
	return n.less
}

// replaceChild points the child slot currently holding from at to.
func (n *node) replaceChild(from, to string) {
	if n.less == from {
		n.less = to
		return
	}
	n.more = to
}
