package api

import "time"

// Config controls auth API behavior.
type Config struct {
	// MaxBodyBytes bounds request bodies on the auth surface.
	MaxBodyBytes int64

	// TrustProxy enables X-Forwarded-For / X-Real-IP for client IPs.
	TrustProxy bool

	// LoginRatePerSec / LoginRateBurst throttle the credential-bearing
	// endpoints per client IP. Zero rate disables throttling.
	LoginRatePerSec float64
	LoginRateBurst  int

	// LockoutMaxFailures counts failed logins per account within
	// LockoutWindow before further attempts get a 429. Zero disables the
	// lockout; it also only engages when the audit trail is DB-backed.
	LockoutMaxFailures int
	LockoutWindow      time.Duration
}

// DefaultConfig returns safe defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:       1 << 20, // 1 MiB
		TrustProxy:         false,
		LoginRatePerSec:    5,
		LoginRateBurst:     10,
		LockoutMaxFailures: 10,
		LockoutWindow:      15 * time.Minute,
	}
}
