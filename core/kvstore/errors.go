package kvstore

import "errors"

var (
	// ErrNotFound is returned when a key is not present in the store.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrKindMismatch is returned when an entry is accessed as the wrong kind.
	ErrKindMismatch = errors.New("kvstore: entry kind mismatch")
	// ErrCorruptEntry is returned when a stored entry cannot be decoded.
	ErrCorruptEntry = errors.New("kvstore: corrupt entry")
)
