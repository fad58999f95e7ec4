package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, "unidet_admin_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "unidet_admin_token", "abc"))
	v, ok, err := store.Get(ctx, "unidet_admin_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// reopening sees the same data
	again, err := NewFileStore(dir)
	require.NoError(t, err)
	v, _, _ = again.Get(ctx, "unidet_admin_token")
	assert.Equal(t, "abc", v)

	require.NoError(t, store.Delete(ctx, "unidet_admin_token", "never_written"))
	_, ok, _ = store.Get(ctx, "unidet_admin_token")
	assert.False(t, ok)
}

func TestMemoryNamespaces_Isolated(t *testing.T) {
	ctx := context.Background()
	ns := NewMemoryNamespaces()

	require.NoError(t, ns.Namespace("a").Set(ctx, "k", "1"))
	_, ok, _ := ns.Namespace("b").Get(ctx, "k")
	assert.False(t, ok)

	v, ok, _ := ns.Namespace("a").Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMemoryLocks(t *testing.T) {
	ctx := context.Background()
	locks := NewMemoryLocks()
	now := time.Unix(1_700_000_000, 0)
	locks.clock = func() time.Time { return now }

	ok, err := locks.Acquire(ctx, "c1:/admin/news", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = locks.Acquire(ctx, "c1:/admin/news", time.Second)
	assert.False(t, ok, "second acquire while held")

	ok, _ = locks.Acquire(ctx, "c2:/admin/news", time.Second)
	assert.True(t, ok, "other clients are independent")

	now = now.Add(2 * time.Second)
	ok, _ = locks.Acquire(ctx, "c1:/admin/news", time.Second)
	assert.True(t, ok, "expired hold is reclaimed")

	require.NoError(t, locks.Release(ctx, "c1:/admin/news"))
	ok, _ = locks.Acquire(ctx, "c1:/admin/news", time.Second)
	assert.True(t, ok)
}
