// Package admin exposes index maintenance to SQL through the dom_admin
// SQLite virtual table: rebuilding the persisted kd-tree for a catalog table
// and querying it for the nearest dominating point.
package admin
