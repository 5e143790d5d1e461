// Package bbolt provides a BBolt-backed kvstore.Store for single-process
// session persistence on local disk.
package bbolt

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/dmitrymomot/authkit/core/kvstore"
)

const defaultBucket = "auth_session"

// Store implements kvstore.Store backed by a BBolt database. All entries
// live in a single bucket created on open.
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

var _ kvstore.Store = (*Store)(nil)

// NewStore returns a store backed by the given BBolt database.
func NewStore(db *bbolt.DB) (*Store, error) {
	s := &Store{db: db, bucket: []byte(defaultBucket)}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return s, nil
}

// NewStoreFromFile opens a BBolt database at the given path and returns a
// store over it.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db)
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Set(_ context.Context, key string, entry kvstore.Entry) error {
	data, err := kvstore.Encode(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), data)
	})
}

func (s *Store) Get(_ context.Context, key string) (kvstore.Entry, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket(s.bucket).Get([]byte(key)); raw != nil {
			data = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return kvstore.Entry{}, err
	}
	if data == nil {
		return kvstore.Entry{}, kvstore.ErrNotFound
	}
	return kvstore.Decode(data)
}

func (s *Store) Remove(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}
