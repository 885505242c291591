package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window request limiter keyed by caller identity
// (user id for API traffic, remote IP for the auth endpoints).
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	cleanup *time.Ticker
}

type bucket struct {
	requests []time.Time
	lastSeen time.Time
}

func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	limiter := &Limiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		cleanup: time.NewTicker(5 * time.Minute),
	}
	go limiter.cleanupOldBuckets()
	return limiter
}

// Allow reports whether the caller identified by key may proceed. An empty
// key (unauthenticated probe that slipped past auth) is not limited here.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	return l.allow(key, l.maxReqs, l.window)
}

// AllowStrict applies a tighter, endpoint-specific budget; used for login and
// signup where credential stuffing is the concern.
func (l *Limiter) AllowStrict(key string, maxReqs int, window time.Duration) bool {
	return l.allow("strict:"+key, maxReqs, window)
}

func (l *Limiter) allow(key string, maxReqs int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-window)
	var reqs []time.Time
	for _, t := range b.requests {
		if t.After(cutoff) {
			reqs = append(reqs, t)
		}
	}
	b.requests = reqs
	b.lastSeen = now

	if len(b.requests) >= maxReqs {
		return false
	}

	b.requests = append(b.requests, now)
	return true
}

func (l *Limiter) cleanupOldBuckets() {
	for range l.cleanup.C {
		l.mu.Lock()
		staleThreshold := time.Now().Add(-15 * time.Minute)
		for key, b := range l.buckets {
			if b.lastSeen.Before(staleThreshold) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *Limiter) Stop() {
	l.cleanup.Stop()
}
