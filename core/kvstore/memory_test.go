package kvstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/kvstore"
)

func TestMemory_SetGet(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "token", kvstore.NewString("a1")))

	entry, err := kv.Get(ctx, "token")
	require.NoError(t, err)

	s, err := entry.Text()
	require.NoError(t, err)
	assert.Equal(t, "a1", s)
}

func TestMemory_GetMissing(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()

	_, err := kv.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestMemory_Overwrite(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "token", kvstore.NewString("old")))
	require.NoError(t, kv.Set(ctx, "token", kvstore.NewString("new")))

	entry, err := kv.Get(ctx, "token")
	require.NoError(t, err)
	s, err := entry.Text()
	require.NoError(t, err)
	assert.Equal(t, "new", s)
	assert.Equal(t, 1, kv.Len())
}

func TestMemory_RemoveIdempotent(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "token", kvstore.NewString("a1")))
	require.NoError(t, kv.Remove(ctx, "token"))

	_, err := kv.Get(ctx, "token")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// Removing again must not fail.
	require.NoError(t, kv.Remove(ctx, "token"))
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			_ = kv.Set(ctx, key, kvstore.NewString("v"))
			_, _ = kv.Get(ctx, key)
			_ = kv.Remove(ctx, key)
		}()
	}
	wg.Wait()
}
