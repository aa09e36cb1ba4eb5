package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNonceStore(t *testing.T) (*NonceStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewNonceStore(client), s
}

func TestNonceStore_CheckAndSet_NewKey(t *testing.T) {
	store, s := newTestNonceStore(t)

	ok, err := store.CheckAndSet(context.Background(), "hash-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "new key should be claimed")
	assert.True(t, s.Exists("replay:hash-abc"))
}

func TestNonceStore_CheckAndSet_Replay(t *testing.T) {
	store, _ := newTestNonceStore(t)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "hash-xyz", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CheckAndSet(ctx, "hash-xyz", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replayed key should not be claimed twice")
}

func TestNonceStore_CheckAndSet_Expired(t *testing.T) {
	store, s := newTestNonceStore(t)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "hash-expire", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	s.FastForward(2 * time.Second)

	ok, err = store.CheckAndSet(ctx, "hash-expire", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired key should be claimable again")
}

func TestNonceStore_Release(t *testing.T) {
	store, s := newTestNonceStore(t)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "hash-release", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "hash-release"))
	assert.False(t, s.Exists("replay:hash-release"))

	ok, err = store.CheckAndSet(ctx, "hash-release", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released key should be claimable again")

	// Releasing an unknown key is a no-op.
	assert.NoError(t, store.Release(ctx, "never-claimed"))
}
