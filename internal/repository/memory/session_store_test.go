package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session:a:token", "tok", time.Minute))

	value, found, err := store.Get(ctx, "session:a:token")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tok", value)

	_, found, err = store.Get(ctx, "session:a:missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionStoreKeysByPrefix(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session:a:token", "1", time.Minute))
	require.NoError(t, store.Put(ctx, "session:a:profile", "2", time.Minute))
	require.NoError(t, store.Put(ctx, "session:b:token", "3", time.Minute))
	require.NoError(t, store.Put(ctx, "other:key", "4", time.Minute))

	keys, err := store.Keys(ctx, "session:a:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session:a:token", "session:a:profile"}, keys)

	keys, err = store.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session:a:token", "tok", time.Minute))
	require.NoError(t, store.Delete(ctx, "session:a:token"))

	_, found, err := store.Get(ctx, "session:a:token")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "session:a:token"))
}

func TestSessionStoreTTLExpiry(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session:a:token", "tok", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Get(ctx, "session:a:token")
	require.NoError(t, err)
	assert.False(t, found)
}
