package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, ok, err := s.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, []byte("k"), []byte("v")))
	v, ok, err := s.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// returned slices are copies
	v[0] = 'x'
	v2, _, _ := s.Get(ctx, []byte("k"))
	assert.Equal(t, []byte("v"), v2)

	require.NoError(t, s.Delete(ctx, []byte("k")))
	_, ok, err = s.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_RejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	assert.ErrorIs(t, s.Set(ctx, nil, []byte("v")), ErrEmptyKey)
	_, _, err := s.Get(ctx, []byte{})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestCache_DiscardLeavesParentUntouched(t *testing.T) {
	ctx := context.Background()
	parent := NewMemStore()
	require.NoError(t, parent.Set(ctx, []byte("a"), []byte("1")))

	c := NewCache(parent)
	require.NoError(t, c.Set(ctx, []byte("b"), []byte("2")))
	require.NoError(t, c.Delete(ctx, []byte("a")))

	_, ok, err := c.Get(ctx, []byte("a"))
	require.NoError(t, err)
	assert.False(t, ok, "buffered delete should hide parent value")

	v, ok, err := c.Get(ctx, []byte("b"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("2"), v)
	assert.Equal(t, 2, c.Pending())

	assert.Equal(t, []string{"a"}, parent.Keys())
}

func TestCache_WriteAppliesBatch(t *testing.T) {
	ctx := context.Background()
	parent := NewMemStore()
	require.NoError(t, parent.Set(ctx, []byte("a"), []byte("1")))

	c := NewCache(parent)
	require.NoError(t, c.Set(ctx, []byte("b"), []byte("2")))
	require.NoError(t, c.Set(ctx, []byte("e"), nil))
	require.NoError(t, c.Delete(ctx, []byte("a")))
	require.NoError(t, c.Write(ctx))

	assert.Equal(t, []string{"b", "e"}, parent.Keys())
	assert.Equal(t, 0, c.Pending())

	v, ok, err := parent.Get(ctx, []byte("e"))
	require.NoError(t, err)
	assert.True(t, ok, "empty values are stored, not deleted")
	assert.Empty(t, v)
}

func TestCache_WriteWithoutCommitter(t *testing.T) {
	ctx := context.Background()
	parent := NewMemStore()
	// the anonymous wrapper hides MemStore's Commit method
	var store Store = struct{ Store }{parent}

	c := NewCache(store)
	require.NoError(t, c.Set(ctx, []byte("x"), []byte("1")))
	require.NoError(t, c.Write(ctx))
	assert.Equal(t, []string{"x"}, parent.Keys())
}

func TestPrefixed_Namespaces(t *testing.T) {
	ctx := context.Background()
	parent := NewMemStore()
	a := NewPrefixed(parent, []byte("a/"))
	b := NewPrefixed(parent, []byte("b/"))

	require.NoError(t, a.Set(ctx, []byte("config"), []byte("1")))
	_, ok, err := b.Get(ctx, []byte("config"))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"a/config"}, parent.Keys())
	assert.ErrorIs(t, a.Set(ctx, nil, nil), ErrEmptyKey)
}
