// Package catalog stores the points an index is built from. It includes:
//   - Store: a SQL-backed catalog of (id, x, y) rows for SQLite or Postgres
//   - Schema helpers to create the catalog table
//   - A change log fed by SQLite triggers, used to replay removals into a
//     live index
//   - LoadJSON for importing prepared catalog records
package catalog
