package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, now *time.Time) *Limiter {
	l := NewLimiter(Config{Limit: limit, Window: time.Hour})
	l.now = func() time.Time { return *now }
	return l
}

func TestLimiter_AllowsBurstThenDenies(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(10, &now)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1")
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Minute, info.RetryAfter)
	assert.True(t, info.ResetTime.After(now))
}

func TestLimiter_Refill(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(10, &now)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		l.Allow("user:a")
	}
	allowed, _ := l.Allow("user:a")
	require.False(t, allowed)

	now = now.Add(7 * time.Minute)
	allowed, _ = l.Allow("user:a")
	assert.True(t, allowed)

	allowed, _ = l.Allow("user:a")
	assert.False(t, allowed)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(1, &now)
	defer l.Stop()

	allowed, _ := l.Allow("ip:1.1.1.1")
	assert.True(t, allowed)
	allowed, _ = l.Allow("ip:1.1.1.1")
	assert.False(t, allowed)

	allowed, _ = l.Allow("ip:2.2.2.2")
	assert.True(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(Config{Limit: 0})
	defer l.Stop()

	assert.False(t, l.Enabled())
	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("anyone")
		require.True(t, allowed)
	}
}

func TestLimiter_CleanupRemovesIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(5, &now)
	defer l.Stop()

	l.Allow("old")
	now = now.Add(3 * time.Hour)
	l.Allow("fresh")

	l.cleanupClients()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "old")
	assert.Contains(t, l.clients, "fresh")
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(Config{Limit: 50, Window: time.Hour})
	defer l.Stop()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("shared"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load())
}

func TestPerHour(t *testing.T) {
	cfg := PerHour(10)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, time.Hour, cfg.Window)

	l := NewLimiter(cfg)
	l.Stop()
	l.Stop()
	assert.True(t, l.Enabled())
}
