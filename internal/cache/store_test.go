package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IncrementsWithinWindow(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Incr(ctx, "client", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestMemoryStore_SeparateKeys(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	count, err := store.Incr(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.Incr(ctx, "b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStore_WindowExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	count, err := store.Incr(ctx, "client", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	time.Sleep(20 * time.Millisecond)

	// The expired window resets and counting starts over.
	count, err = store.Incr(ctx, "client", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
