package kv

import "context"

// Prefixed namespaces every key under a fixed prefix.
type Prefixed struct {
	parent Store
	prefix []byte
}

func NewPrefixed(parent Store, prefix []byte) Prefixed {
	return Prefixed{parent: parent, prefix: append([]byte(nil), prefix...)}
}

func (p Prefixed) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	return append(out, k...)
}

func (p Prefixed) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}
	return p.parent.Get(ctx, p.key(key))
}

func (p Prefixed) Set(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return p.parent.Set(ctx, p.key(key), value)
}

func (p Prefixed) Delete(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return p.parent.Delete(ctx, p.key(key))
}
