// Package postgres implements kvstore.Store backed by PostgreSQL.
//
// Entries are stored with the kind and payload as individual columns, using
// native JSONB storage for the payload instead of the serialized envelope.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/core/kvstore"
)

//go:embed schema.sql
var schemaSQL string

// Config holds PostgreSQL connection settings loadable from the environment.
type Config struct {
	ConnectionURL string `env:"DATABASE_URL,required"`
}

// Store implements kvstore.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ kvstore.Store = (*Store)(nil)

// NewStore returns a store backed by the given pgx connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewStoreFromDSN creates a connection pool from a DSN string, ensures the
// schema exists, and returns a store over it.
func NewStoreFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return NewStore(pool), nil
}

// EnsureSchema creates the required table if it does not exist. Safe to call
// on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Set(ctx context.Context, key string, entry kvstore.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_kv (key, kind, payload, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (key)
		 DO UPDATE SET kind = $2, payload = $3, updated_at = now()`,
		key, string(entry.Kind), []byte(entry.Payload))
	return err
}

func (s *Store) Get(ctx context.Context, key string) (kvstore.Entry, error) {
	var (
		kind    string
		payload []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT kind, payload FROM auth_kv WHERE key = $1`, key).Scan(&kind, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return kvstore.Entry{}, kvstore.ErrNotFound
	}
	if err != nil {
		return kvstore.Entry{}, err
	}
	return kvstore.Entry{Kind: kvstore.Kind(kind), Payload: json.RawMessage(payload)}, nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM auth_kv WHERE key = $1`, key)
	return err
}
