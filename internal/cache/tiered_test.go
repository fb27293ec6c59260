package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// stubTier stands in for the Redis tier.
type stubTier struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	gets    int
}

func newStubTier() *stubTier {
	return &stubTier{entries: map[string][]byte{}}
}

func (s *stubTier) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	payload, ok := s.entries[key]
	return payload, ok, nil
}

func (s *stubTier) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = payload
	return nil
}

func (s *stubTier) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *stubTier) Close() error { return nil }

func (s *stubTier) getCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func testTieredCache(t *testing.T, redis ResponseCache) *TieredCache {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing

	memory, err := NewMemoryCache(100, time.Minute)
	require.NoError(t, err)

	return NewTieredCache(logger, memory, redis)
}

func TestTieredCache_MemoryHit(t *testing.T) {
	stub := newStubTier()
	cache := testTieredCache(t, stub)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))

	payload, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value"), payload)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.MemoryHits)
	assert.Equal(t, 0, stub.getCount(), "memory hit should not reach Redis tier")
}

func TestTieredCache_RedisFallback(t *testing.T) {
	stub := newStubTier()
	stub.entries["key"] = []byte("warm")
	cache := testTieredCache(t, stub)
	ctx := context.Background()

	payload, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("warm"), payload)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.MemoryMisses)
	assert.Equal(t, int64(1), stats.RedisHits)

	// Redis hit populates the memory tier
	_, found, err = cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), cache.Stats().MemoryHits)
	assert.Equal(t, 1, stub.getCount())
}

func TestTieredCache_MemoryOnly(t *testing.T) {
	cache := testTieredCache(t, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))

	payload, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value"), payload)

	_, found, err = cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTieredCache_RedisFailure(t *testing.T) {
	stub := newStubTier()
	stub.getErr = errors.New("connection refused")
	cache := testTieredCache(t, stub)
	ctx := context.Background()

	// Redis read failures degrade to a miss, never an error
	payload, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, payload)
}

func TestTieredCache_BreakerOpens(t *testing.T) {
	stub := newStubTier()
	stub.getErr = errors.New("connection refused")
	cache := testTieredCache(t, stub)
	ctx := context.Background()

	// Three consecutive failures trip the breaker
	for i := 0; i < 3; i++ {
		_, found, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, gobreaker.StateOpen, cache.BreakerState())

	// Open breaker short-circuits without touching the tier
	before := stub.getCount()
	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, stub.getCount())
	assert.GreaterOrEqual(t, cache.Stats().RedisSkips, int64(1))

	// Writes still land in the memory tier
	require.NoError(t, cache.Set(ctx, "local", []byte("value"), 0))
	payload, found, err := cache.Get(ctx, "local")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value"), payload)
}

func TestTieredCache_Delete(t *testing.T) {
	stub := newStubTier()
	cache := testTieredCache(t, stub)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))
	require.NoError(t, cache.Delete(ctx, "key"))

	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, stub.entries)
}

func TestResponseKey(t *testing.T) {
	record1 := domain.PatientRecord{
		"patient_id": "patient-001",
		"age":        30.0,
	}
	record2 := domain.PatientRecord{
		"age":        30.0,
		"patient_id": "patient-001",
	}

	key1 := ResponseKey("identify_phenotype", record1)
	key2 := ResponseKey("identify_phenotype", record2)

	// Keys are identical regardless of field insertion order
	assert.Equal(t, key1, key2)
	assert.True(t, strings.HasPrefix(key1, "identify_phenotype:response:"))
	assert.Len(t, key1, len("identify_phenotype:response:")+16)

	assert.NotEqual(t, key1, ResponseKey("patient_intake", record1))

	record3 := domain.PatientRecord{
		"patient_id": "patient-002",
		"age":        30.0,
	}
	assert.NotEqual(t, key1, ResponseKey("identify_phenotype", record3))
}
