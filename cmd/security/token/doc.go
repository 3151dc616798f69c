// Package token provides the server-side digest scheme for opaque refresh
// tokens.
//
// Refresh tokens are high-entropy random strings; the plaintext is handed to
// the client exactly once and only a keyed digest (HMAC-SHA256, hex) is
// persisted. The digest is deterministic, so the sessions table can keep a
// unique index on it and look a presented token up directly instead of
// scanning every active session.
package token
