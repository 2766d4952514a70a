// Package engine provides helpers for opening the SQL databases used by this
// module: the pure-Go modernc.org/sqlite driver for local catalogs and index
// snapshots, and lib/pq for catalogs kept in Postgres. It also registers SQL
// scalar functions exposing the dominance predicate to SQLite queries.
package engine
