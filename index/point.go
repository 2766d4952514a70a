package index

import (
	"math"
	"strconv"

	"github.com/viant/vec/search"
)

// Point is a 2D coordinate pair: axis 0 followed by axis 1. Coordinates must
// be finite. Distances are computed in float32, so they overflow to +Inf
// once a coordinate difference exceeds about 1.8e19; beyond that, nearest
// selection among dominators is arbitrary, but every result still dominates.
type Point [2]float32

// Axes is the number of coordinates in a Point.
const Axes = 2

// Dominates reports whether a dominates b, i.e. b lies strictly further on
// axis 0 and strictly lower on axis 1.
func Dominates(a, b Point) bool {
	return b[0] > a[0] && b[1] < a[1]
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float32 {
	return search.Float32s(a[:]).EuclideanDistance(b[:])
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	for _, v := range p {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (p Point) String() string {
	return "(" + strconv.FormatFloat(float64(p[0]), 'f', -1, 32) + "," + strconv.FormatFloat(float64(p[1]), 'f', -1, 32) + ")"
}
