// Package matcher serves nearest-dominator queries over a point catalog. It
// keeps a kd-tree in memory, restores it from a snapshot store on Load,
// removes retired points from both the catalog and the tree, and replays
// catalog changes recorded by the SQLite change log.
//
// A Service serializes mutations against queries with a read/write lock, so
// it is safe for concurrent use.
package matcher
