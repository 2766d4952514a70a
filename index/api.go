package index

// Index defines a dominance index over 2D catalog points. It is built once
// from (id, point) pairs, answers nearest-dominator queries, supports removal
// of single entries, and serializes for persistence.
type Index interface {
	// Build constructs the index from the given entries. Entries must be
	// non-empty and carry unique ids.
	Build(entries []Entry) error

	// Search returns the id of the cataloged point that dominates query and is
	// closest to it. ok is false when no point dominates the query.
	Search(query Point) (id string, ok bool)

	// Remove deletes the entry with the given id.
	Remove(id string) error

	// Len returns the number of cataloged entries.
	Len() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
