package kv

import (
	"context"
	"fmt"
)

// Cache buffers writes over a parent Store. Reads see buffered writes
// first. Nothing reaches the parent until Write is called; dropping the
// Cache discards every buffered write.
type Cache struct {
	parent Store
	writes map[string][]byte // nil value = deleted
}

func NewCache(parent Store) *Cache {
	return &Cache{parent: parent, writes: make(map[string][]byte)}
}

func (c *Cache) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}
	if v, ok := c.writes[string(key)]; ok {
		if v == nil {
			return nil, false, nil
		}
		return append([]byte(nil), v...), true, nil
	}
	return c.parent.Get(ctx, key)
}

func (c *Cache) Set(_ context.Context, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	c.writes[string(key)] = append([]byte{}, value...)
	return nil
}

func (c *Cache) Delete(_ context.Context, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	c.writes[string(key)] = nil
	return nil
}

// Pending reports the number of buffered writes.
func (c *Cache) Pending() int { return len(c.writes) }

// Write flushes buffered writes to the parent. Parents implementing
// Committer receive the whole batch in one call; others get one Set or
// Delete per key.
func (c *Cache) Write(ctx context.Context) error {
	if len(c.writes) == 0 {
		return nil
	}
	if cm, ok := c.parent.(Committer); ok {
		if err := cm.Commit(ctx, c.writes); err != nil {
			return fmt.Errorf("commit %d writes: %w", len(c.writes), err)
		}
		c.writes = make(map[string][]byte)
		return nil
	}
	for k, v := range c.writes {
		var err error
		if v == nil {
			err = c.parent.Delete(ctx, []byte(k))
		} else {
			err = c.parent.Set(ctx, []byte(k), v)
		}
		if err != nil {
			return fmt.Errorf("write %q: %w", k, err)
		}
	}
	c.writes = make(map[string][]byte)
	return nil
}
