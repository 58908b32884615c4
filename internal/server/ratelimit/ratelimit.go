// Package ratelimit limits generation requests per client using token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	// Limit is the number of requests a client may make per Window. Zero disables limiting.
	Limit           int
	Window          time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL time.Duration
}

// PerHour returns a config allowing limit requests per client per hour.
func PerHour(limit int) Config {
	return Config{
		Limit:           limit,
		Window:          time.Hour,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         2 * time.Hour,
	}
}

type client struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	config  Config
	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a limiter. A cleanup goroutine runs when CleanupInterval is set;
// call Stop to end it.
func NewLimiter(config Config) *Limiter {
	if config.Window <= 0 {
		config.Window = time.Hour
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 2 * config.Window
	}
	l := &Limiter{
		config:  config,
		clients: make(map[string]*client),
		now:     time.Now,
	}
	if config.Limit > 0 && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}
	return l
}

// Enabled reports whether requests are limited at all.
func (l *Limiter) Enabled() bool {
	return l.config.Limit > 0
}

// Allow consumes one token for key and reports whether the request may proceed.
func (l *Limiter) Allow(key string) (bool, Info) {
	if !l.Enabled() {
		return true, Info{Allowed: true}
	}

	now := l.now()
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		every := l.config.Window / time.Duration(l.config.Limit)
		c = &client{limiter: rate.NewLimiter(rate.Every(every), l.config.Limit)}
		l.clients[key] = c
	}
	c.lastAccess = now
	allowed := c.limiter.AllowN(now, 1)
	tokens := c.limiter.TokensAt(now)
	l.mu.Unlock()

	info := Info{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetTime: now.Add(l.untilTokens(tokens, float64(l.config.Limit))),
	}
	if !allowed {
		info.RetryAfter = l.untilTokens(tokens, 1)
	}
	return allowed, info
}

// untilTokens is the time needed to refill from have to want tokens.
func (l *Limiter) untilTokens(have, want float64) time.Duration {
	if have >= want {
		return 0
	}
	perToken := l.config.Window / time.Duration(l.config.Limit)
	return time.Duration((want - have) * float64(perToken))
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupClients()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupClients removes buckets idle for longer than IdleTTL.
func (l *Limiter) cleanupClients() {
	cutoff := l.now().Add(-l.config.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if c.lastAccess.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
			close(l.cleanupStop)
		}
	})
}
