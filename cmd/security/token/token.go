package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// MinKeyBytes is the minimum accepted HMAC key length.
const MinKeyBytes = 32

// Hasher computes keyed digests of refresh tokens for storage and lookup.
//
// The key is process-wide configuration resolved once at startup and injected
// here; the package never reads the environment itself.
type Hasher struct {
	key []byte
}

// NewHasher builds a Hasher from the configured secret.
func NewHasher(key string) (Hasher, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return Hasher{}, ErrKeyMissing
	}
	if len(trimmed) < MinKeyBytes {
		return Hasher{}, ErrKeyTooShort
	}
	return Hasher{key: []byte(trimmed)}, nil
}

// Sum returns the hex-encoded HMAC-SHA256 digest of plain.
func (h Hasher) Sum(plain string) string {
	m := hmac.New(sha256.New, h.key)
	_, _ = m.Write([]byte(plain))
	return hex.EncodeToString(m.Sum(nil))
}

// Equal reports whether plain hashes to digestHex. Comparison is
// constant-time over the digest bytes.
func (h Hasher) Equal(digestHex, plain string) bool {
	want, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}
	m := hmac.New(sha256.New, h.key)
	_, _ = m.Write([]byte(plain))
	got := m.Sum(nil)
	return subtle.ConstantTimeCompare(want, got) == 1
}
