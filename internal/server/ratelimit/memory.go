// Package ratelimit provides the request throttling stores used by the HTTP
// surface. Both satisfy echo's middleware.RateLimiterStore.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps one token bucket per identifier. Buckets idle for
// longer than the window are swept on access.
type MemoryStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore allows requests per window per identifier, with a burst of
// requests.
func NewMemoryStore(requests int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		now:      time.Now,
	}
}

func (s *MemoryStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > s.window {
		for id, v := range s.visitors {
			if now.Sub(v.lastSeen) > s.window {
				delete(s.visitors, id)
			}
		}
		s.lastSweep = now
	}

	v, ok := s.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[identifier] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}
