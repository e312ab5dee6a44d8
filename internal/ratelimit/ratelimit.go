// Package ratelimit is a keyed token bucket shared by the notification
// dispatcher (keyed by chat) and the status API (keyed by client IP).
package ratelimit

import (
	"sync"
	"time"
)

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// Limiter holds one bucket per key. A zero or negative rate disables it.
type Limiter struct {
	rate  float64 // tokens per second
	burst float64
	mu    sync.Mutex
	m     map[string]*tokenBucket
	now   func() time.Time
}

// PerMinute builds a limiter allowing perMin events per minute with the
// given burst. Burst below 1 is raised to 1.
func PerMinute(perMin, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rate:  float64(perMin) / 60.0,
		burst: float64(burst),
		m:     make(map[string]*tokenBucket),
		now:   time.Now,
	}
}

func (l *Limiter) Enabled() bool { return l != nil && l.rate > 0 }

func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	tb := l.m[key]
	if tb == nil {
		tb = &tokenBucket{tokens: l.burst, last: now}
		l.m[key] = tb
	}
	// refill
	elapsed := now.Sub(tb.last).Seconds()
	tb.tokens = min(l.burst, tb.tokens+elapsed*l.rate)
	tb.last = now

	if tb.tokens < 1.0 {
		return false
	}
	tb.tokens -= 1.0
	return true
}
