// Package pgkv implements kv.Store on PostgreSQL.
package pgkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdullah1738/wasm-factory/internal/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS factory_kv (
	k BYTEA PRIMARY KEY,
	v BYTEA NOT NULL
)`

const upsert = `
INSERT INTO factory_kv (k, v) VALUES ($1, $2)
ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`

// Store is a kv.Store backed by a PostgreSQL table.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL, pings it and ensures the schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, kv.ErrEmptyKey
	}
	var v []byte
	err := s.pool.QueryRow(ctx, `SELECT v FROM factory_kv WHERE k = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key: %w", err)
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return kv.ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.pool.Exec(ctx, upsert, key, value); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return kv.ErrEmptyKey
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM factory_kv WHERE k = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Commit applies writes in one transaction.
func (s *Store) Commit(ctx context.Context, writes map[string][]byte) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for k, v := range writes {
		if v == nil {
			batch.Queue(`DELETE FROM factory_kv WHERE k = $1`, []byte(k))
		} else {
			batch.Queue(upsert, []byte(k), v)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply writes: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
