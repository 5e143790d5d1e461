package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/core/kvstore"
)

// Store implements kvstore.Store backed by Redis. Keys are namespaced with
// a prefix so several applications can share one database.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ kvstore.Store = (*Store)(nil)

// NewStore returns a store backed by the given Redis client.
func NewStore(client redis.UniversalClient, keyPrefix string) *Store {
	return &Store{client: client, prefix: keyPrefix}
}

// NewStoreFromConfig connects per the config and returns a store.
func NewStoreFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(client, cfg.KeyPrefix), nil
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) Set(ctx context.Context, key string, entry kvstore.Entry) error {
	data, err := kvstore.Encode(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, 0).Err()
}

func (s *Store) Get(ctx context.Context, key string) (kvstore.Entry, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return kvstore.Entry{}, kvstore.ErrNotFound
	}
	if err != nil {
		return kvstore.Entry{}, err
	}
	return kvstore.Decode(data)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
