package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *Config {
	return &Config{
		Enabled: true,
		Rules: []Rule{
			{Prefix: "/api/ai/", Limit: 30, Window: time.Minute, Burst: 5},
			{Prefix: "/health", Limit: 0},
		},
		Default: Rule{Limit: 300, Window: time.Minute},
	}
}

func TestAllowWithinBurst(t *testing.T) {
	limiter := NewLimiter(newTestConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("client-1", "/api/ai/generate")
		assert.True(t, allowed, "request %d within burst must be allowed", i+1)
		assert.Equal(t, 30, info.Limit)
	}
}

func TestAllowExceedsBurst(t *testing.T) {
	limiter := NewLimiter(newTestConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("client-1", "/api/ai/generate")
		require.True(t, allowed)
	}

	allowed, info := limiter.Allow("client-1", "/api/ai/generate")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestClientsAreIsolated(t *testing.T) {
	limiter := NewLimiter(newTestConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow("client-1", "/api/ai/generate")
	}
	allowed, _ := limiter.Allow("client-1", "/api/ai/generate")
	require.False(t, allowed)

	allowed, _ = limiter.Allow("client-2", "/api/ai/generate")
	assert.True(t, allowed, "a different client has its own bucket")
}

func TestPathsShareBucketPerRule(t *testing.T) {
	limiter := NewLimiter(newTestConfig())
	defer limiter.Stop()

	// Different paths under the same prefix draw from one bucket
	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("client-1", fmt.Sprintf("/api/ai/op-%d", i))
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("client-1", "/api/ai/another")
	assert.False(t, allowed)
}

func TestUnlimitedRule(t *testing.T) {
	limiter := NewLimiter(newTestConfig())
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("client-1", "/health")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestDisabledLimiter(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("client-1", "/api/ai/generate")
		require.True(t, allowed)
	}
}

func TestNilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("client-1", "/anything")
	assert.True(t, allowed)
}

func TestDefaultRule(t *testing.T) {
	limiter := NewLimiter(newTestConfig())
	defer limiter.Stop()

	allowed, info := limiter.Allow("client-1", "/api/status")
	assert.True(t, allowed)
	assert.Equal(t, 300, info.Limit)
}

func TestConfigMatch(t *testing.T) {
	cfg := newTestConfig()

	tests := []struct {
		path      string
		wantLimit int
	}{
		{path: "/api/ai/generate", wantLimit: 30},
		{path: "/health", wantLimit: 0},
		{path: "/api/status", wantLimit: 300},
		{path: "/", wantLimit: 300},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, cfg.match(tt.path).Limit)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_AI_LIMIT", "")

	cfg := LoadConfig()
	require.True(t, cfg.Enabled)
	assert.Equal(t, 30, cfg.match("/api/ai/generate").Limit)
	assert.Equal(t, 60, cfg.match("/api/auth/login").Limit)
	assert.Equal(t, 0, cfg.match("/health").Limit)
	assert.Equal(t, 300, cfg.match("/api/status").Limit)
}

func TestLoadConfigDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_AI_LIMIT", "10")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")

	cfg := LoadConfig()
	assert.Equal(t, 10, cfg.match("/api/ai/generate").Limit)
	assert.Equal(t, 50, cfg.match("/other").Limit)
}

func TestBucketRefill(t *testing.T) {
	// 10 tokens/second, capacity 1
	b := newBucket(1, 10)

	allowed, _, _ := b.take()
	require.True(t, allowed)

	allowed, _, _ = b.take()
	require.False(t, allowed)

	time.Sleep(150 * time.Millisecond)

	allowed, _, _ = b.take()
	assert.True(t, allowed, "bucket refills over time")
}
