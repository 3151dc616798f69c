package session

import (
	"context"
	"time"
)

// RequestContext carries diagnostic client metadata recorded on each session.
// It never participates in authorization decisions.
type RequestContext struct {
	UserAgent string
	IP        string
}

// Row mirrors one sessions row: the server-side record of one issued refresh
// token and its revocation/lineage state.
type Row struct {
	ID          string
	DealerID    string
	TokenDigest string

	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time

	// RotatedFrom points at the session this one replaced, forming the
	// lineage chain back to the original login. Nil for login/register rows.
	RotatedFrom *string

	UserAgent *string
	IP        *string
}

// Usable reports whether the session can still be exchanged.
func (r Row) Usable(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.ExpiresAt)
}

// NextSession describes the successor row created during rotation.
type NextSession struct {
	TokenDigest string
	ExpiresAt   time.Time
	Req         RequestContext
}

// Store abstracts session persistence.
//
// Rotate is the ordering-sensitive operation: implementations must revoke the
// matched row and create its successor atomically, so that a concurrent
// double-exchange of the same token succeeds at most once.
type Store interface {
	// Create inserts a new session row.
	Create(ctx context.Context, now time.Time, dealerID string, req RequestContext, tokenDigest string, expiresAt time.Time, rotatedFrom *string) (Row, error)

	// GetByID loads a session row. Missing -> ErrSessionNotFound.
	GetByID(ctx context.Context, sessionID string) (Row, error)

	// FindActiveByDigest returns the non-revoked, non-expired session whose
	// digest matches. Missing or unusable -> ErrSessionNotFound.
	FindActiveByDigest(ctx context.Context, tokenDigest string, now time.Time) (Row, error)

	// Rotate atomically revokes the session matching tokenDigest and creates
	// its successor with rotated_from set.
	//
	// Outcomes:
	//   - no match                 -> ErrSessionNotFound
	//   - expired                  -> ErrSessionExpired
	//   - revoked via rotation     -> ErrReuseDetected (all dealer sessions revoked first)
	//   - revoked otherwise        -> ErrSessionRevoked
	Rotate(ctx context.Context, now time.Time, tokenDigest string, next NextSession) (old Row, created Row, err error)

	// Revoke marks one session revoked. Idempotent.
	Revoke(ctx context.Context, now time.Time, sessionID string) error

	// RevokeAllForDealer marks every session of a dealer revoked. Idempotent.
	RevokeAllForDealer(ctx context.Context, now time.Time, dealerID string) error

	// DeleteExpired removes sessions whose expires_at is before cutoff and
	// returns the number of rows deleted. Expired-row GC only; revoked rows
	// are kept until expiry for the audit lineage.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
