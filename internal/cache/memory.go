// Package cache provides the response cache tiers used by the serving
// layers: an in-process expirable LRU, a Redis-backed tier, and a tiered
// facade that degrades to memory-only when Redis is unavailable.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is the in-process cache tier backed by an expirable LRU.
type MemoryCache struct {
	lru *expirable.LRU[string, cacheEntry]
	ttl time.Duration
}

// NewMemoryCache creates a new memory cache holding at most maxItems entries,
// each expiring after ttl.
func NewMemoryCache(maxItems int, ttl time.Duration) (*MemoryCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxItems)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %s", ttl)
	}

	return &MemoryCache{
		lru: expirable.NewLRU[string, cacheEntry](maxItems, nil, ttl),
		ttl: ttl,
	}, nil
}

// Get retrieves a cached payload. The LRU's own TTL caps entry lifetime; a
// shorter per-entry TTL is honored here on read.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.isExpired() {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// Set stores a payload. A zero ttl falls back to the cache default.
func (m *MemoryCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.ttl
	}

	m.lru.Add(key, cacheEntry{
		payload:   payload,
		cachedAt:  time.Now(),
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a cached payload.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

// Purge removes all cached payloads.
func (m *MemoryCache) Purge() {
	m.lru.Purge()
}

// Close implements ResponseCache. The memory tier holds no external
// resources.
func (m *MemoryCache) Close() error {
	return nil
}

type cacheEntry struct {
	payload   []byte
	cachedAt  time.Time
	expiresAt time.Time
}

func (e cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}
