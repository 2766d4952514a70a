// Package snapshot persists serialized indexes under a name. The payload is
// opaque: callers pass the bytes produced by an index's MarshalBinary and get
// them back on Load. Backends include SQLite (the index_storage table), Redis
// and a plain directory.
package snapshot
