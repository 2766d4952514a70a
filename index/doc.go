// Package index defines a minimal abstraction for dominance indexes that are
// built from (id, point) pairs, queried for the nearest dominating point, and
// serialized for persistence. It also holds the shared geometry (Point,
// Dominates, Distance) and the error kinds used by implementations.
// Implementations in this module include a kd-tree and a brute-force baseline.
package index
