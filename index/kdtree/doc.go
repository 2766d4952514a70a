// Package kdtree provides a 2D partition tree answering nearest-dominator
// queries: given a query point it returns the cataloged point that dominates
// it (strictly greater on axis 0, strictly lower on axis 1) and is closest in
// Euclidean distance.
//
// Nodes live in an arena keyed by id. Leaves are keyed by their catalog id and
// internal nodes by generated keys; parent and child links hold keys rather
// than pointers. The split axis of an internal node is not stored, it is
// derived from the node depth (axis = depth mod 2) during traversal.
//
// Removal promotes the sibling of the removed leaf into its grandparent slot.
// Dividers are never recomputed and the tree is never rebalanced, so after
// removals a promoted subtree is traversed on the axis of its new depth. Found
// results always dominate the query; nearest-ness is exact for a freshly built
// tree and approximate once removals have reshaped it.
//
// A Tree is not safe for concurrent use. Callers must serialize Build and
// Remove with respect to each other and to Search.
package kdtree
