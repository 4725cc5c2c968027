package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is a rate limit for a path prefix.
type Rule struct {
	Prefix string        // Path prefix; empty matches everything
	Limit  int           // Maximum requests per window; <= 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	CleanupInterval time.Duration
	Rules           []Rule // Checked in order; first prefix match wins
	Default         Rule
}

// LoadConfig loads rate limiting configuration from environment variables.
// RATE_LIMIT_ENABLED (default true) switches the limiter off entirely;
// RATE_LIMIT_AI_LIMIT and RATE_LIMIT_DEFAULT_LIMIT tune the per-minute budgets.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	aiLimit := getEnvInt("RATE_LIMIT_AI_LIMIT", 30)
	authLimit := getEnvInt("RATE_LIMIT_AUTH_LIMIT", 60)
	defaultLimit := getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 300)

	return &Config{
		Enabled:         true,
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Rules: []Rule{
			// AI endpoints fan out to a paid upstream; keep them strict.
			{Prefix: "/api/ai/", Limit: aiLimit, Window: time.Minute, Burst: 5},
			// Auth endpoints are a credential-stuffing target.
			{Prefix: "/api/auth/", Limit: authLimit, Window: time.Minute, Burst: 10},
			// Health checks are unlimited.
			{Prefix: "/health", Limit: 0},
		},
		Default: Rule{Limit: defaultLimit, Window: time.Minute},
	}
}

// match returns the first rule whose prefix matches the path, or the default.
func (c *Config) match(path string) Rule {
	for _, rule := range c.Rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule
		}
	}
	return c.Default
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
