package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"dealerdesk/cmd/dealer"
	"dealerdesk/cmd/security/token"
)

// Service is the token issuer: it mints access/refresh pairs, rotates refresh
// tokens, and revokes sessions. Storage atomicity lives in the Store.
type Service struct {
	cfg    Config
	store  Store
	tokens AccessTokenManager
	hasher token.Hasher
}

// Issued is the result of issuing or rotating a session.
type Issued struct {
	SessionID    string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// RotationResult carries the outcome of a refresh exchange. RefreshToken is
// the successor plaintext; Old is the spent session.
type RotationResult struct {
	Old          Row
	New          Row
	RefreshToken string
}

// NewService constructs a Service. The config must already be validated.
func NewService(cfg Config, store Store, tokens AccessTokenManager, hasher token.Hasher) *Service {
	return &Service{cfg: cfg, store: store, tokens: tokens, hasher: hasher}
}

// Issue creates a new session for an authenticated dealer and returns a fresh
// access/refresh pair. The refresh plaintext is returned exactly once; only
// its digest is persisted.
func (s *Service) Issue(ctx context.Context, now time.Time, d dealer.Dealer, req RequestContext) (Issued, error) {
	plain, digest, err := newOpaqueRefreshToken(s.cfg.RefreshTokenBytes, s.hasher)
	if err != nil {
		return Issued{}, err
	}

	refreshExp := now.Add(s.cfg.RefreshTTL)
	row, err := s.store.Create(ctx, now, d.ID, req, digest, refreshExp, nil)
	if err != nil {
		return Issued{}, err
	}

	accessToken, accessExp, err := s.tokens.Issue(d.ID, d.Role, now)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		SessionID:    row.ID,
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: plain,
		RefreshExp:   refreshExp,
	}, nil
}

// IssueAccessToken mints a short-lived access token for an existing session,
// used after rotation once the owning dealer has been loaded.
func (s *Service) IssueAccessToken(d dealer.Dealer, now time.Time) (string, time.Time, error) {
	return s.tokens.Issue(d.ID, d.Role, now)
}

// VerifyAccessToken verifies a presented access token. Stateless: expired or
// tampered tokens fail without touching the store.
func (s *Service) VerifyAccessToken(tokenString string, now time.Time) (AccessClaims, error) {
	return s.tokens.Verify(tokenString, now)
}

// RotateRefresh exchanges a refresh token for a successor session.
//
// The matched session is revoked and the successor created in one atomic
// store operation, so a refresh token is single-use even under concurrent
// exchange attempts: the loser of the race observes a revoked row.
// A token revoked by a previous rotation counts as reuse; the store revokes
// the dealer's whole session set before ErrReuseDetected surfaces.
func (s *Service) RotateRefresh(ctx context.Context, now time.Time, refreshPlain string, req RequestContext) (RotationResult, error) {
	refreshPlain = strings.TrimSpace(refreshPlain)
	// Sanity bounds against pathological inputs.
	if refreshPlain == "" || len(refreshPlain) > 4096 {
		return RotationResult{}, ErrSessionNotFound
	}

	newPlain, newDigest, err := newOpaqueRefreshToken(s.cfg.RefreshTokenBytes, s.hasher)
	if err != nil {
		return RotationResult{}, err
	}

	old, created, err := s.store.Rotate(ctx, now, s.hasher.Sum(refreshPlain), NextSession{
		TokenDigest: newDigest,
		ExpiresAt:   now.Add(s.cfg.RefreshTTL),
		Req:         req,
	})
	if err != nil {
		return RotationResult{}, err
	}

	return RotationResult{Old: old, New: created, RefreshToken: newPlain}, nil
}

// Logout revokes the session matching the presented refresh token, if any.
// It never reports whether the token was valid: unknown, expired, and
// already-revoked tokens all come back nil. Only infrastructure failures
// surface as errors.
func (s *Service) Logout(ctx context.Context, now time.Time, refreshPlain string) error {
	refreshPlain = strings.TrimSpace(refreshPlain)
	if refreshPlain == "" || len(refreshPlain) > 4096 {
		return nil
	}

	row, err := s.store.FindActiveByDigest(ctx, s.hasher.Sum(refreshPlain), now)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.store.Revoke(ctx, now, row.ID)
}

// RevokeAll revokes every session of a dealer.
func (s *Service) RevokeAll(ctx context.Context, now time.Time, dealerID string) error {
	return s.store.RevokeAllForDealer(ctx, now, dealerID)
}

// SweepExpired deletes sessions past their expiry. Invoked by the background
// sweeper; safe to run concurrently with request traffic.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteExpired(ctx, now)
}
