// Package config provides environment-driven configuration for the service.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// InsecureDefaultSecret is used when JWT_SECRET is unset. It exists so the
// service can run out of the box in development, and it is never accepted
// silently: NewJWTConfig logs a warning whenever it is in effect.
const InsecureDefaultSecret = "dev-secret-change-me"

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret            string
	ExpirationMinutes int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (insecure default if unset) and JWT_EXPIRATION_MINUTES
// (default: 15).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = InsecureDefaultSecret
		log.Printf("WARNING: JWT_SECRET is not set; using the insecure development default. Set JWT_SECRET before deploying.")
	}

	expirationStr := os.Getenv("JWT_EXPIRATION_MINUTES")
	if expirationStr == "" {
		expirationStr = "15" // default
	}

	expirationMinutes, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %v", err)
	}

	config := &JWTConfig{
		Secret:            secret,
		ExpirationMinutes: expirationMinutes,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}
	if c.ExpirationMinutes < 1 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be at least 1 minute, got: %d", c.ExpirationMinutes)
	}
	return nil
}
