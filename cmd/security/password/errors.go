package password

import "errors"

var (
	// ErrTooShort is returned when a password is below the policy minimum.
	ErrTooShort = errors.New("password too short")

	// ErrTooLong is returned when a password exceeds the policy maximum.
	ErrTooLong = errors.New("password too long")

	// ErrInvalidHash is returned for malformed or unsupported encoded hashes.
	ErrInvalidHash = errors.New("invalid argon2id hash")
)
