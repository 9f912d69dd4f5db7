package detector

import (
	"sync"
	"time"
)

// RateLimiter suppresses repeated alerts from the same source IP within a
// sliding window, so one noisy host cannot flood the activity log.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	seen   map[string][]time.Time
	now    func() time.Time
}

// NewRateLimiter allows at most max alerts per source per window.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 5
	}
	return &RateLimiter{
		window: window,
		max:    max,
		seen:   map[string][]time.Time{},
		now:    time.Now,
	}
}

// Allow records an alert for sourceIP and reports whether it should be
// emitted or suppressed.
func (rl *RateLimiter) Allow(sourceIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	times := rl.seen[sourceIP]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.max {
		rl.seen[sourceIP] = kept
		return false
	}

	rl.seen[sourceIP] = append(kept, now)
	return true
}
