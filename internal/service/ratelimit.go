package service

import (
	"sync"
	"time"
)

// AttemptLimiter is a process-local sliding-window request cap keyed by
// source address. It deliberately knows nothing about attempt outcomes;
// failure history is the ledger gate's job. When the service runs as
// multiple replicas behind a load balancer the cap holds per replica, not
// globally, because the window lives in process memory.
type AttemptLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

// Allow records the request unless the key already has max requests inside
// the trailing window. On rejection it reports how long until the oldest
// recorded request leaves the window.
func (l *AttemptLimiter) Allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	ts := l.entries[key]

	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	ts = kept
	if len(ts) >= l.max {
		l.entries[key] = ts
		return false, ts[0].Sub(cutoff)
	}

	ts = append(ts, now)
	l.entries[key] = ts
	return true, 0
}
