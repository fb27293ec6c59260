package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// ResponseCache is the surface shared by the cache tiers.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Stats tracks per-tier cache performance.
type Stats struct {
	MemoryHits   int64     `json:"memory_hits"`
	MemoryMisses int64     `json:"memory_misses"`
	RedisHits    int64     `json:"redis_hits"`
	RedisMisses  int64     `json:"redis_misses"`
	RedisSkips   int64     `json:"redis_skips"`
	LastReset    time.Time `json:"last_reset"`
}

// TieredCache reads through the memory tier first and the Redis tier second.
// The Redis tier sits behind a circuit breaker; while the breaker is open the
// cache degrades to memory-only.
type TieredCache struct {
	logger  *logrus.Logger
	memory  *MemoryCache
	redis   ResponseCache
	breaker *gobreaker.CircuitBreaker

	stats   Stats
	statsMu sync.RWMutex
}

// NewTieredCache creates a tiered cache. A nil redis tier disables
// distribution and leaves the memory tier serving alone.
func NewTieredCache(logger *logrus.Logger, memory *MemoryCache, redis ResponseCache) *TieredCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "RedisCache",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Cache circuit breaker state changed")
		},
	})

	return &TieredCache{
		logger:  logger,
		memory:  memory,
		redis:   redis,
		breaker: breaker,
		stats:   Stats{LastReset: time.Now()},
	}
}

type redisLookup struct {
	payload []byte
	found   bool
}

// Get retrieves a cached payload, checking memory first and Redis second. A
// Redis hit is written back into the memory tier.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if payload, found, _ := t.memory.Get(ctx, key); found {
		t.recordMemory(true)
		return payload, true, nil
	}
	t.recordMemory(false)

	if t.redis == nil {
		return nil, false, nil
	}

	result, err := t.breaker.Execute(func() (interface{}, error) {
		payload, found, err := t.redis.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return redisLookup{payload: payload, found: found}, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			t.recordRedisSkip()
			t.logger.WithField("key", key).Debug("Redis tier unavailable, serving memory-only")
			return nil, false, nil
		}
		t.logger.WithError(err).Warn("Failed to read from Redis tier")
		return nil, false, nil
	}

	lookup := result.(redisLookup)
	if !lookup.found {
		t.recordRedis(false)
		return nil, false, nil
	}
	t.recordRedis(true)

	// Populate the memory tier for next time
	if err := t.memory.Set(ctx, key, lookup.payload, 0); err != nil {
		t.logger.WithError(err).Warn("Failed to populate memory tier")
	}

	return lookup.payload, true, nil
}

// Set stores a payload in both tiers. Redis failures are logged and do not
// fail the operation.
func (t *TieredCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := t.memory.Set(ctx, key, payload, ttl); err != nil {
		return err
	}

	if t.redis == nil {
		return nil
	}

	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.redis.Set(ctx, key, payload, ttl)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			t.recordRedisSkip()
			return nil
		}
		t.logger.WithError(err).Warn("Failed to store response in Redis tier")
	}

	return nil
}

// Delete removes a payload from both tiers.
func (t *TieredCache) Delete(ctx context.Context, key string) error {
	if err := t.memory.Delete(ctx, key); err != nil {
		return err
	}

	if t.redis == nil {
		return nil
	}

	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.redis.Delete(ctx, key)
	})
	if err != nil && err != gobreaker.ErrOpenState && err != gobreaker.ErrTooManyRequests {
		t.logger.WithError(err).Warn("Failed to delete response from Redis tier")
	}

	return nil
}

// Stats returns a snapshot of per-tier performance counters.
func (t *TieredCache) Stats() Stats {
	t.statsMu.RLock()
	defer t.statsMu.RUnlock()
	return t.stats
}

// BreakerState reports the Redis tier's circuit breaker state.
func (t *TieredCache) BreakerState() gobreaker.State {
	return t.breaker.State()
}

// Close closes the Redis tier.
func (t *TieredCache) Close() error {
	if t.redis == nil {
		return nil
	}
	return t.redis.Close()
}

func (t *TieredCache) recordMemory(hit bool) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	if hit {
		t.stats.MemoryHits++
	} else {
		t.stats.MemoryMisses++
	}
}

func (t *TieredCache) recordRedis(hit bool) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	if hit {
		t.stats.RedisHits++
	} else {
		t.stats.RedisMisses++
	}
}

func (t *TieredCache) recordRedisSkip() {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	t.stats.RedisSkips++
}

// ResponseKey builds the cache key for an agent response. The record JSON is
// hashed so equivalent records map to the same key regardless of field order.
func ResponseKey(agentID string, record domain.PatientRecord) string {
	recordJSON, _ := json.Marshal(record)
	hash := sha256.Sum256(append([]byte(agentID+"::"), recordJSON...))
	return fmt.Sprintf("%s:response:%x", agentID, hash[:8])
}
