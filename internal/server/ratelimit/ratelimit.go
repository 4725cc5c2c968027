// Package ratelimit provides per-client rate limiting using token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket refilling at a steady rate.
type bucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newBucket(capacity int, refillRate float64) *bucket {
	now := time.Now()
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // Start with full bucket
		lastRefill: now,
		lastAccess: now,
	}
}

// take refills based on elapsed time and consumes one token if available.
// Returns whether the request is allowed, the remaining tokens, and when the
// bucket will be full again.
func (b *bucket) take() (allowed bool, remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.tokens = min(float64(b.capacity), b.tokens+elapsed.Seconds()*b.refillRate)
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		allowed = true
	}

	remaining = int(b.tokens)
	if b.tokens < float64(b.capacity) {
		secondsUntilFull := (float64(b.capacity) - b.tokens) / b.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	} else {
		resetTime = now
	}

	return allowed, remaining, resetTime
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages token buckets per client+endpoint combination.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	config  *Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: false}
	}

	limiter := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanupLoop()
	}

	return limiter
}

// Allow checks whether a request from clientID to the given path is allowed.
func (l *Limiter) Allow(clientID, path string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	rule := l.config.match(path)
	if rule.Limit <= 0 {
		// Unlimited endpoint (e.g. health check)
		return true, Info{Allowed: true}
	}

	b := l.getBucket(clientID+":"+rule.Prefix, rule)
	allowed, remaining, resetTime := b.take()

	var retryAfter time.Duration
	if !allowed {
		retryAfter = max(time.Until(resetTime), 0)
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      rule.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

// getBucket gets or creates the bucket for the given key.
func (l *Limiter) getBucket(key string, rule Rule) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[key]
	l.mu.RUnlock()
	if exists {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	refillRate := float64(rule.Limit) / rule.Window.Seconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	// Double-check after acquiring write lock
	if existing, exists := l.buckets[key]; exists {
		return existing
	}
	b = newBucket(capacity, refillRate)
	l.buckets[key] = b
	return b
}

// cleanupLoop periodically drops buckets idle for over an hour.
func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.dropIdleBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) dropIdleBuckets() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastAccess.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
