package signal

import (
	"sync"
	"time"
)

const (
	maxFramesPerWindow = 32
	frameWindow        = time.Second
)

// frameLimiter caps inbound frames for one connection over a sliding window.
type frameLimiter struct {
	mu       sync.Mutex
	history  []time.Time
	limit    int
	interval time.Duration
}

func newFrameLimiter(limit int, interval time.Duration) *frameLimiter {
	return &frameLimiter{
		limit:    limit,
		interval: interval,
	}
}

func (rl *frameLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	fresh := rl.history[:0]
	for _, t := range rl.history {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	rl.history = fresh

	if len(rl.history) >= rl.limit {
		return false
	}
	rl.history = append(rl.history, now)
	return true
}
