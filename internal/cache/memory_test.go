package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryCache(t *testing.T) {
	tests := []struct {
		name     string
		maxItems int
		ttl      time.Duration
		wantErr  bool
	}{
		{name: "valid", maxItems: 100, ttl: time.Minute, wantErr: false},
		{name: "zero size", maxItems: 0, ttl: time.Minute, wantErr: true},
		{name: "negative size", maxItems: -1, ttl: time.Minute, wantErr: true},
		{name: "zero TTL", maxItems: 100, ttl: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewMemoryCache(tt.maxItems, tt.ttl)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cache)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cache)
		})
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache, err := NewMemoryCache(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	payload, found, err := cache.Get(ctx, "identify_phenotype:response:abc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, payload)

	want := []byte(`{"success":true,"message":"Phenotype identification complete: A"}`)
	require.NoError(t, cache.Set(ctx, "identify_phenotype:response:abc", want, 0))

	payload, found, err = cache.Get(ctx, "identify_phenotype:response:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, payload)
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache, err := NewMemoryCache(100, 50*time.Millisecond)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))

	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)

	// Wait for expiration
	time.Sleep(60 * time.Millisecond)

	_, found, err = cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_PerEntryTTL(t *testing.T) {
	cache, err := NewMemoryCache(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	// Entry TTL shorter than the cache TTL wins
	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 30*time.Millisecond))

	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(40 * time.Millisecond)

	_, found, err = cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Eviction(t *testing.T) {
	cache, err := NewMemoryCache(2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "first", []byte("1"), 0))
	require.NoError(t, cache.Set(ctx, "second", []byte("2"), 0))
	require.NoError(t, cache.Set(ctx, "third", []byte("3"), 0))

	assert.Equal(t, 2, cache.Len())

	_, found, err := cache.Get(ctx, "first")
	require.NoError(t, err)
	assert.False(t, found, "oldest entry should have been evicted")

	_, found, err = cache.Get(ctx, "third")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache, err := NewMemoryCache(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))
	require.NoError(t, cache.Delete(ctx, "key"))

	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Purge(t *testing.T) {
	cache, err := NewMemoryCache(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}
