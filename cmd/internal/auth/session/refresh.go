package session

import (
	"crypto/rand"
	"encoding/base64"

	"dealerdesk/cmd/security/token"
)

// newOpaqueRefreshToken generates a fresh refresh token and its stored digest.
// The plaintext leaves this package exactly once, in the issue result.
func newOpaqueRefreshToken(nBytes int, h token.Hasher) (plain, digest string, err error) {
	b := make([]byte, nBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}

	// URL-safe, no padding.
	plain = base64.RawURLEncoding.EncodeToString(b)
	digest = h.Sum(plain)
	return plain, digest, nil
}
