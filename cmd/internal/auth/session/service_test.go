package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealerdesk/cmd/dealer"
	"dealerdesk/cmd/security/token"
)

const (
	testJWTSecret = "test-jwt-secret-0123456789abcdef0123"
	testHMACKey   = "test-hmac-key-0123456789abcdef012345"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.JWTSecret = testJWTSecret
	cfg.RefreshHMACKey = testHMACKey
	require.NoError(t, cfg.Validate())

	tokens, err := NewJWTManager(cfg)
	require.NoError(t, err)

	hasher, err := token.NewHasher(cfg.RefreshHMACKey)
	require.NoError(t, err)

	store := NewMemoryStore()
	return NewService(cfg, store, tokens, hasher), store
}

func testDealer() dealer.Dealer {
	return dealer.Dealer{
		ID:    dealer.NewID(),
		Email: "dealer@example.com",
		Role:  dealer.RoleDealer,
	}
}

func TestIssue_ReturnsUsablePair(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now().UTC()
	d := testDealer()

	issued, err := svc.Issue(context.Background(), now, d, RequestContext{UserAgent: "go-test", IP: "10.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, issued.SessionID)
	require.NotEmpty(t, issued.AccessToken)
	require.NotEmpty(t, issued.RefreshToken)
	require.True(t, issued.RefreshExp.After(now))

	claims, err := svc.VerifyAccessToken(issued.AccessToken, now)
	require.NoError(t, err)
	require.Equal(t, d.ID, claims.DealerID)
	require.Equal(t, dealer.RoleDealer, claims.Role)

	// Only the digest is persisted, never the plaintext.
	row, err := store.GetByID(context.Background(), issued.SessionID)
	require.NoError(t, err)
	require.NotEqual(t, issued.RefreshToken, row.TokenDigest)
	require.Len(t, row.TokenDigest, 64)
}

func TestRotateRefresh_SpendsOldAndLinksSuccessor(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now().UTC()
	d := testDealer()

	issued, err := svc.Issue(context.Background(), now, d, RequestContext{})
	require.NoError(t, err)

	res, err := svc.RotateRefresh(context.Background(), now.Add(time.Minute), issued.RefreshToken, RequestContext{})
	require.NoError(t, err)
	require.Equal(t, issued.SessionID, res.Old.ID)
	require.NotNil(t, res.Old.RevokedAt)
	require.NotEqual(t, issued.RefreshToken, res.RefreshToken)

	// Lineage: the successor records which session it replaced.
	require.NotNil(t, res.New.RotatedFrom)
	require.Equal(t, issued.SessionID, *res.New.RotatedFrom)

	row, err := store.GetByID(context.Background(), res.Old.ID)
	require.NoError(t, err)
	require.NotNil(t, row.RevokedAt)
}

func TestRotateRefresh_SecondUseIsReuse(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now().UTC()
	d := testDealer()

	issued, err := svc.Issue(context.Background(), now, d, RequestContext{})
	require.NoError(t, err)

	res, err := svc.RotateRefresh(context.Background(), now.Add(time.Minute), issued.RefreshToken, RequestContext{})
	require.NoError(t, err)

	// Replaying the spent token trips reuse detection.
	_, err = svc.RotateRefresh(context.Background(), now.Add(2*time.Minute), issued.RefreshToken, RequestContext{})
	require.ErrorIs(t, err, ErrReuseDetected)

	// Reuse revokes the whole lineage, successor included.
	_, err = svc.RotateRefresh(context.Background(), now.Add(3*time.Minute), res.RefreshToken, RequestContext{})
	require.ErrorIs(t, err, ErrSessionRevoked)
}

func TestRotateRefresh_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now().UTC()
	d := testDealer()

	issued, err := svc.Issue(context.Background(), now, d, RequestContext{})
	require.NoError(t, err)

	late := now.Add(svc.cfg.RefreshTTL + time.Hour)
	_, err = svc.RotateRefresh(context.Background(), late, issued.RefreshToken, RequestContext{})
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestRotateRefresh_InputBounds(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now().UTC()

	_, err := svc.RotateRefresh(context.Background(), now, "", RequestContext{})
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.RotateRefresh(context.Background(), now, "   ", RequestContext{})
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.RotateRefresh(context.Background(), now, strings.Repeat("x", 5000), RequestContext{})
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.RotateRefresh(context.Background(), now, "no-such-token", RequestContext{})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogout_RevokesWithoutLeaking(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now().UTC()
	d := testDealer()

	issued, err := svc.Issue(context.Background(), now, d, RequestContext{})
	require.NoError(t, err)

	// Unknown tokens succeed silently.
	require.NoError(t, svc.Logout(context.Background(), now, "no-such-token"))
	require.NoError(t, svc.Logout(context.Background(), now, ""))

	require.NoError(t, svc.Logout(context.Background(), now, issued.RefreshToken))

	// A logged-out token cannot rotate; it has no successor, so this is a
	// plain revoked session, not reuse.
	_, err = svc.RotateRefresh(context.Background(), now.Add(time.Minute), issued.RefreshToken, RequestContext{})
	require.ErrorIs(t, err, ErrSessionRevoked)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(context.Background(), now, issued.RefreshToken))
}

func TestRevokeAll(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now().UTC()
	d := testDealer()

	a, err := svc.Issue(context.Background(), now, d, RequestContext{})
	require.NoError(t, err)
	b, err := svc.Issue(context.Background(), now, d, RequestContext{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(context.Background(), now, d.ID))

	for _, tok := range []string{a.RefreshToken, b.RefreshToken} {
		_, err = svc.RotateRefresh(context.Background(), now.Add(time.Minute), tok, RequestContext{})
		require.ErrorIs(t, err, ErrSessionRevoked)
	}
}

func TestSweepExpired(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now().UTC()

	expired, err := svc.Issue(context.Background(), now.Add(-2*svc.cfg.RefreshTTL), testDealer(), RequestContext{})
	require.NoError(t, err)
	live, err := svc.Issue(context.Background(), now, testDealer(), RequestContext{})
	require.NoError(t, err)

	n, err := svc.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = store.GetByID(context.Background(), expired.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetByID(context.Background(), live.SessionID)
	require.NoError(t, err)
}
