// Package config provides password storage configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// PasswordMode selects how passwords are stored and verified.
type PasswordMode string

const (
	// ModePlaintext stores passwords as given and compares with plain equality.
	// INSECURE: this exists only for parity with the upstream system this
	// service replaces. Use ModeBcrypt in any real deployment.
	ModePlaintext PasswordMode = "plaintext"
	// ModeBcrypt stores bcrypt hashes and verifies with constant-time comparison.
	ModeBcrypt PasswordMode = "bcrypt"
)

// PasswordConfig holds configuration for password storage and verification.
type PasswordConfig struct {
	Mode       PasswordMode
	BcryptCost int
}

// NewPasswordConfig creates a new password configuration from environment
// variables. It reads AUTH_PASSWORD_MODE (default: plaintext, see ModePlaintext)
// and BCRYPT_COST (default: 12).
func NewPasswordConfig() (*PasswordConfig, error) {
	mode := PasswordMode(os.Getenv("AUTH_PASSWORD_MODE"))
	if mode == "" {
		mode = ModePlaintext
	}

	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &PasswordConfig{
		Mode:       mode,
		BcryptCost: cost,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	switch c.Mode {
	case ModePlaintext, ModeBcrypt:
	default:
		return fmt.Errorf("unknown AUTH_PASSWORD_MODE: %s (must be plaintext or bcrypt)", c.Mode)
	}
	if c.Mode == ModeBcrypt && (c.BcryptCost < 10 || c.BcryptCost > 14) {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassword produces the stored form of a password for the configured mode.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	if c.Mode == ModePlaintext {
		// Stored as given. Flagged insecure; see ModePlaintext.
		return pw, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword verifies a password against its stored form.
func (c *PasswordConfig) VerifyPassword(pw, stored string) bool {
	if c.Mode == ModePlaintext {
		// Plain, non-constant-time equality for parity with the upstream
		// system. Flagged insecure; see ModePlaintext.
		return pw == stored
	}

	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(pw))
	return err == nil
}
