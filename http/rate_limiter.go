package http

import (
	"sync"
	"time"
)

const (
	staleVisitorAge = 1 * time.Hour
	sweepInterval   = 30 * time.Minute
)

type visitor struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a per-client token bucket. Each client gets capacity
// requests per window; the bucket refills all at once when the window
// elapses. Idle clients are swept periodically so the map doesn't grow
// without bound.
type RateLimiter struct {
	mu        sync.Mutex
	capacity  int
	window    time.Duration
	visitors  map[string]*visitor
	stopSweep chan struct{}
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		capacity:  capacity,
		window:    window,
		visitors:  make(map[string]*visitor),
		stopSweep: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopSweep:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastRefill) > staleVisitorAge {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.stopSweep)
}

// Allow reports whether the client identified by key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[key]
	if !ok {
		rl.visitors[key] = &visitor{
			tokens:     rl.capacity - 1,
			lastRefill: now,
		}
		return true
	}

	if now.Sub(v.lastRefill) >= rl.window {
		v.tokens = rl.capacity
		v.lastRefill = now
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}
