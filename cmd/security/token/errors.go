package token

import "errors"

var (
	// ErrKeyMissing is returned when no HMAC key is configured.
	ErrKeyMissing = errors.New("token: hmac key missing")

	// ErrKeyTooShort is returned when the HMAC key is below the minimum length.
	ErrKeyTooShort = errors.New("token: hmac key too short")
)
