// Package dealer defines the dealer principal: the business account that
// authenticates against the marketplace, its persistence boundary, and the
// credential verifier.
package dealer
