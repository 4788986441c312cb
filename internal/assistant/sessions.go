package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"go.uber.org/zap"
)

// SessionRegistry holds one generator per driver. Sessions are created on
// demand and evicted after a period of inactivity, so one driver's history
// never leaks into another's and the process does not accumulate dead
// conversations forever.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Generator
	factory  func() *Generator
	now      func() time.Time
}

// NewSessionRegistry creates a registry; factory builds a fresh generator
// for each new session key.
func NewSessionRegistry(factory func() *Generator) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Generator),
		factory:  factory,
		now:      time.Now,
	}
}

// Session returns the generator for the driver, creating it if needed.
func (r *SessionRegistry) Session(driverID string) *Generator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen, ok := r.sessions[driverID]; ok {
		return gen
	}

	gen := r.factory()
	r.sessions[driverID] = gen
	return gen
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle removes sessions inactive for longer than maxIdle and returns
// the number evicted.
func (r *SessionRegistry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for driverID, gen := range r.sessions {
		if gen.LastActive().Before(cutoff) {
			delete(r.sessions, driverID)
			evicted++
		}
	}
	return evicted
}

// StartJanitor runs periodic idle eviction until the context is cancelled.
func (r *SessionRegistry) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := r.EvictIdle(maxIdle); evicted > 0 {
					logger.Debug("evicted idle assistant sessions",
						zap.Int("count", evicted),
					)
				}
			}
		}
	}()
}

// WithNow overrides the time source (useful for tests).
func (r *SessionRegistry) WithNow(now func() time.Time) {
	r.now = now
}
