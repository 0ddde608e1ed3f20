// Package kv provides the key/value storage the host exposes to contracts.
//
// Key components:
//   - Store: byte-keyed storage with explicit absence (Get reports ok=false)
//   - MemStore: in-memory Store, used by tests and the "memory" driver
//   - Cache: write buffer over a Store, committed or discarded as a unit
//   - Prefixed: a namespaced view of a Store
package kv

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrEmptyKey = errors.New("empty key")

// Store is byte-keyed storage. Get returns ok=false for absent keys; it
// never returns a zero value in place of an error.
type Store interface {
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
}

// Committer is implemented by stores that can apply a batch of writes
// atomically. A nil value in writes means delete.
type Committer interface {
	Commit(ctx context.Context, writes map[string][]byte) error
}

// MemStore is an in-memory Store safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemStore) Set(_ context.Context, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(key)] = append([]byte{}, value...)
	return nil
}

func (s *MemStore) Delete(_ context.Context, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

func (s *MemStore) Commit(_ context.Context, writes map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range writes {
		if v == nil {
			delete(s.data, k)
			continue
		}
		s.data[k] = append([]byte{}, v...)
	}
	return nil
}

// Keys returns all keys in lexical order.
func (s *MemStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
