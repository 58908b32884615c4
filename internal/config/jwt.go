package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// JWTConfig holds the signing settings for login tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default 24)
// and JWT_ISSUER (default "cv-builder").
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours := 24
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		hours = n
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "cv-builder"
	}

	cfg := &JWTConfig{Secret: secret, ExpirationHours: hours, Issuer: issuer}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TTL returns the token lifetime.
func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 || c.ExpirationHours > 24*30 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be between 1 and 720, got: %d", c.ExpirationHours)
	}
	return nil
}
