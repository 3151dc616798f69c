package dealer

import "strings"

// NormalizeEmail performs case-insensitive canonicalization: trim + lower.
// Uniqueness and lookups run over the normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
