package session

import (
	"fmt"
	"time"
)

// Config defines runtime configuration for the session subsystem: access and
// refresh lifetimes, refresh entropy, and the signing/digest secrets.
//
// It is resolved once at startup (see cmd/internal/app) and injected here;
// this package never reads the environment.
type Config struct {
	// Issuer is the "iss" claim of access tokens.
	Issuer string

	// AccessTokenTTL is the lifetime of signed access tokens.
	AccessTokenTTL time.Duration

	// RefreshTTL is the absolute lifetime of refresh tokens.
	RefreshTTL time.Duration

	// RefreshTokenBytes is the entropy of opaque refresh tokens.
	RefreshTokenBytes int

	// JWTSecret signs HS256 access tokens.
	JWTSecret string

	// RefreshHMACKey keys the stored refresh-token digests.
	RefreshHMACKey string
}

// DefaultConfig returns the recommended defaults: 15-minute access tokens,
// 30-day refresh tokens, 48 bytes of refresh entropy.
func DefaultConfig() Config {
	return Config{
		Issuer:            "dealerdesk",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTTL:        30 * 24 * time.Hour,
		RefreshTokenBytes: 48,
	}
}

// Validate checks invariants and reports ErrConfig with context on failure.
func (c Config) Validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("%w: issuer required", ErrConfig)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("%w: access ttl must be positive", ErrConfig)
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("%w: refresh ttl must be positive", ErrConfig)
	}
	if c.RefreshTokenBytes < 32 || c.RefreshTokenBytes > 64 {
		return fmt.Errorf("%w: refresh token bytes out of range [32..64]", ErrConfig)
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("%w: jwt secret must be at least 32 bytes", ErrConfig)
	}
	return nil
}
