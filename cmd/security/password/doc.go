// Package password implements Argon2id password hashing with PHC-style
// encoding and a small validation policy.
//
// Hashes look like:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt_b64>$<key_b64>
//
// Verify performs strict decoding and refuses hashes whose parameters are
// wildly above the configured cost, so an attacker-supplied hash string
// cannot drive memory usage.
package password
