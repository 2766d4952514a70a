package kdtree

import (
	"math"

	"github.com/viant/domindex/index"
)

// Search returns the id of the closest leaf dominated by query, that is the
// closest point p with p[0] > query[0] and p[1] < query[1]. When two
// dominating points are equidistant either may be returned.
func (t *Tree) Search(query index.Point) (string, bool) {
	if t.root == "" {
		return "", false
	}
	return t.search(t.root, query, 0)
}

func (t *Tree) search(key string, query index.Point, depth int) (string, bool) {
	n := t.nodes[key]
	if n.isLeaf() {
		if index.Dominates(query, n.point) {
			return key, true
		}
		return "", false
	}
	axis := depth % index.Axes
	forward, reverse := n.sides(axis)
	if inside(query, n.divider, axis) {
		// Nothing on the forward side can dominate the query.
		return t.search(reverse, query, depth+1)
	}
	best, ok := t.search(forward, query, depth+1)
	if ok && gap(query, n.divider, axis) >= t.distance(query, best) {
		return best, true
	}
	other, found := t.search(reverse, query, depth+1)
	return t.closer(query, best, ok, other, found)
}

// inside reports whether query lies in the forward region of a divider:
// at or past it on axis 0, at or below it on axis 1.
func inside(query index.Point, divider float32, axis int) bool {
	if axis == 0 {
		return query[0] >= divider
	}
	return query[1] <= divider
}

func gap(query index.Point, divider float32, axis int) float32 {
	return float32(math.Abs(float64(query[axis]) - float64(divider)))
}

func (t *Tree) distance(query index.Point, id string) float32 {
	return index.Distance(query, t.nodes[id].point)
}

func (t *Tree) closer(query index.Point, a string, aOK bool, b string, bOK bool) (string, bool) {
	switch {
	case !aOK:
		return b, bOK
	case !bOK:
		return a, true
	case t.distance(query, b) < t.distance(query, a):
		return b, true
	default:
		return a, true
	}
}
