package protocol

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientRateLimiter enforces per-client request budgets using token
// buckets. Each client gets its own limiter so one chatty client cannot
// starve the rest of an HTTP transport.
type ClientRateLimiter struct {
	logger    *logrus.Logger
	limiters  map[string]*rate.Limiter
	perMinute int
	burst     int
	mu        sync.Mutex
}

// NewClientRateLimiter creates a rate limiter allowing perMinute requests
// per client with the given burst. A perMinute of zero or less disables
// limiting entirely.
func NewClientRateLimiter(logger *logrus.Logger, perMinute, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		logger:    logger,
		limiters:  make(map[string]*rate.Limiter),
		perMinute: perMinute,
		burst:     burst,
	}
}

// AllowRequest reports whether the client may issue another request now.
// Unknown clients are initialized on first use.
func (rl *ClientRateLimiter) AllowRequest(clientID string) bool {
	if rl.perMinute <= 0 {
		return true
	}

	rl.mu.Lock()
	limiter, exists := rl.limiters[clientID]
	if !exists {
		limiter = rl.newLimiter()
		rl.limiters[clientID] = limiter
	}
	rl.mu.Unlock()

	allowed := limiter.Allow()
	if !allowed {
		rl.logger.WithField("client_id", clientID).Warn("MCP client exceeded rate limit")
	}
	return allowed
}

// InitializeClient pre-creates a limiter so a fresh session starts with a
// full burst allowance.
func (rl *ClientRateLimiter) InitializeClient(clientID string) {
	if rl.perMinute <= 0 {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if _, exists := rl.limiters[clientID]; !exists {
		rl.limiters[clientID] = rl.newLimiter()
	}
}

// RemoveClient drops the limiter state for a disconnected client
func (rl *ClientRateLimiter) RemoveClient(clientID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, clientID)
}

func (rl *ClientRateLimiter) newLimiter() *rate.Limiter {
	// The bucket refills at the per-minute budget expressed per second.
	return rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.burst)
}

// GetStats returns rate limiter statistics
func (rl *ClientRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"total_clients":       len(rl.limiters),
		"requests_per_minute": rl.perMinute,
		"burst":               rl.burst,
	}
}
