package session

import "errors"

var (
	// ErrInvalidToken is returned when an access token fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSessionNotFound is returned when a refresh token matches no session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the matched session is past expires_at.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionRevoked is returned when the matched session was revoked
	// outside of rotation (logout, administrative revoke).
	ErrSessionRevoked = errors.New("session revoked")

	// ErrReuseDetected is returned when a rotated refresh token is presented
	// again. The store revokes every session of the owning dealer before
	// returning this.
	ErrReuseDetected = errors.New("refresh token reuse detected")

	// ErrConfig is returned for invalid session configuration.
	ErrConfig = errors.New("invalid session config")
)
