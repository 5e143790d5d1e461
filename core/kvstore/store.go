package kvstore

import "context"

// Store defines the persistence interface for credential and profile entries.
// Implementations must handle concurrent access safely.
//
// Get returns ErrNotFound for absent keys. Remove is idempotent: removing an
// absent key is not an error.
type Store interface {
	Set(ctx context.Context, key string, entry Entry) error
	Get(ctx context.Context, key string) (Entry, error)
	Remove(ctx context.Context, key string) error
}
