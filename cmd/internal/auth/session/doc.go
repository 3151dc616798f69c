// Package session implements the dealer session model: short-lived JWT access
// tokens plus opaque, single-use refresh tokens tracked server-side.
//
// One session row exists per issued refresh token. Rotation revokes the
// presented token and creates its successor inside a single transaction; the
// successor records its lineage through rotated_from, forming an auditable
// chain back to the original login. Presenting an already-rotated token is
// treated as reuse and revokes every session of the owning dealer.
//
// Refresh tokens are stored only as a keyed HMAC-SHA256 digest; the plaintext
// is returned to the client exactly once and is never retrievable again.
package session
