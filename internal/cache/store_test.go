package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	key := []byte("some-hash")
	_, ok, _ := store.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, key, "/cache/artifact.tar.gz"))
	path, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/cache/artifact.tar.gz", path)

	require.NoError(t, store.Delete(ctx, key))
	_, ok, _ = store.Get(ctx, key)
	assert.False(t, ok)
}

func TestStore_PutIsUpsert(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	key := []byte("dup-hash")
	require.NoError(t, store.Put(ctx, key, "/first/path"))
	require.NoError(t, store.Put(ctx, key, "/second/path"))

	path, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/second/path", path)
}

func TestStore_AllAndCount(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0, store.Count())
	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, store.Put(ctx, []byte("k1"), "/a"))
	require.NoError(t, store.Put(ctx, []byte("k2"), "/b"))

	assert.Equal(t, 2, store.Count())
	all, err = store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
