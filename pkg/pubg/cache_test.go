package pubg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := pubg.NewMemoryCache(10)
	ctx := context.Background()

	entry := &pubg.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err := cache.Set(ctx, "test-key", entry)
	require.NoError(t, err)

	retrieved, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.True(t, cache.Has(ctx, "test-key"))
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := pubg.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "non-existent")
	require.ErrorIs(t, err, pubg.ErrKeyNotFound)
	assert.Contains(t, err.Error(), "key not found")
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := pubg.NewMemoryCache(10)
	ctx := context.Background()

	entry := &pubg.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}

	require.NoError(t, cache.Set(ctx, "expired-key", entry))

	_, err := cache.Get(ctx, "expired-key")
	require.ErrorIs(t, err, pubg.ErrEntryExpired)
	assert.False(t, cache.Has(ctx, "expired-key"))
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := pubg.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", &pubg.CacheEntry{Data: []byte("a")}))
	require.NoError(t, cache.Set(ctx, "b", &pubg.CacheEntry{Data: []byte("b")}))

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := pubg.NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", &pubg.CacheEntry{Data: []byte("a")}))
	require.NoError(t, cache.Set(ctx, "b", &pubg.CacheEntry{Data: []byte("b")}))

	_, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "c", &pubg.CacheEntry{Data: []byte("c")}))

	assert.Equal(t, 2, cache.Len())
	assert.True(t, cache.Has(ctx, "a"))
	assert.False(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_ConfiguredTTL(t *testing.T) {
	t.Parallel()

	cache, err := pubg.NewCacheFromConfig(context.Background(), &pubg.CacheConfig{
		Type:    pubg.CacheTypeMemory,
		MaxSize: 4,
		TTL:     20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "doc", &pubg.CacheEntry{Data: []byte("x")}))
	assert.True(t, cache.Has(ctx, "doc"))

	assert.Eventually(t, func() bool { return !cache.Has(ctx, "doc") }, time.Second, 10*time.Millisecond)
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := pubg.NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", &pubg.CacheEntry{Data: []byte("x")}))

	_, err := cache.Get(ctx, "key")
	require.ErrorIs(t, err, pubg.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "key"))
	require.NoError(t, cache.Delete(ctx, "key"))
	require.NoError(t, cache.Clear(ctx))
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	l1 := pubg.NewMemoryCache(10)
	l2 := pubg.NewMemoryCache(10)
	chain := pubg.NewCacheChain(l1, l2)
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "key", &pubg.CacheEntry{Data: []byte("from-l2")}))

	entry, err := chain.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-l2"), entry.Data)
	assert.True(t, l1.Has(ctx, "key"), "hit in L2 populates L1")

	require.NoError(t, chain.Delete(ctx, "key"))
	assert.False(t, chain.Has(ctx, "key"))

	_, err = chain.Get(ctx, "key")
	require.ErrorIs(t, err, pubg.ErrKeyNotFoundInAnyCache)
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cache, err := pubg.NewCacheFromConfig(ctx, nil)
	require.NoError(t, err)
	assert.IsType(t, &pubg.MemoryCache{}, cache)

	cache, err = pubg.NewCacheFromConfig(ctx, &pubg.CacheConfig{Type: pubg.CacheTypeNone})
	require.NoError(t, err)
	assert.IsType(t, &pubg.NoOpCache{}, cache)

	_, err = pubg.NewCacheFromConfig(ctx, &pubg.CacheConfig{Type: pubg.CacheTypeNATS})
	require.ErrorIs(t, err, pubg.ErrNATSConfigRequired)

	_, err = pubg.NewCacheFromConfig(ctx, &pubg.CacheConfig{Type: pubg.CacheTypeNATS, NATS: &pubg.NATSKVConfig{}})
	require.ErrorIs(t, err, pubg.ErrNATSURLRequired)

	_, err = pubg.NewCacheFromConfig(ctx, &pubg.CacheConfig{Type: "redis"})
	require.ErrorIs(t, err, pubg.ErrUnsupportedCacheType)
}
