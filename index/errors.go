package index

import "errors"

var (
	// ErrEmptyTree is returned when removing from an index with no entries.
	ErrEmptyTree = errors.New("index: empty")
	// ErrNotFound is returned when an id does not name a cataloged entry.
	ErrNotFound = errors.New("index: not found")
	// ErrMalformedInput is returned for empty or duplicate build input and
	// for corrupt serialized data.
	ErrMalformedInput = errors.New("index: malformed input")
	// ErrAlreadyBuilt is returned when Build is called on a populated index.
	ErrAlreadyBuilt = errors.New("index: already built")
)
