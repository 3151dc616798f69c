package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealerdesk/cmd/dealer"
)

func newTestJWTManager(t *testing.T, secret string) *JWTManager {
	t.Helper()

	cfg := DefaultConfig()
	cfg.JWTSecret = secret
	cfg.RefreshHMACKey = testHMACKey

	mgr, err := NewJWTManager(cfg)
	require.NoError(t, err)
	return mgr
}

func TestJWT_IssueAndVerify(t *testing.T) {
	mgr := newTestJWTManager(t, testJWTSecret)
	now := time.Now().UTC()

	tok, exp, err := mgr.Issue("01HZZZZZZZZZZZZZZZZZZZZZZZ", dealer.RoleDealer, now)
	require.NoError(t, err)
	require.True(t, exp.After(now))

	claims, err := mgr.Verify(tok, now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZZ", claims.DealerID)
	require.Equal(t, dealer.RoleDealer, claims.Role)
	require.Equal(t, DefaultConfig().Issuer, claims.Issuer)
	require.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestJWT_Expired(t *testing.T) {
	mgr := newTestJWTManager(t, testJWTSecret)
	now := time.Now().UTC()

	tok, _, err := mgr.Issue("01HZZZZZZZZZZZZZZZZZZZZZZZ", dealer.RoleDealer, now)
	require.NoError(t, err)

	_, err = mgr.Verify(tok, now.Add(DefaultConfig().AccessTokenTTL+time.Minute))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	now := time.Now().UTC()

	tok, _, err := newTestJWTManager(t, testJWTSecret).Issue("01HZZZZZZZZZZZZZZZZZZZZZZZ", dealer.RoleDealer, now)
	require.NoError(t, err)

	other := newTestJWTManager(t, "a-completely-different-secret-0123456")
	_, err = other.Verify(tok, now)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Tampered(t *testing.T) {
	mgr := newTestJWTManager(t, testJWTSecret)
	now := time.Now().UTC()

	tok, _, err := mgr.Issue("01HZZZZZZZZZZZZZZZZZZZZZZZ", dealer.RoleDealer, now)
	require.NoError(t, err)

	_, err = mgr.Verify(tok+"x", now)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = mgr.Verify("not-a-jwt", now)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsUnknownRole(t *testing.T) {
	mgr := newTestJWTManager(t, testJWTSecret)
	now := time.Now().UTC()

	_, _, err := mgr.Issue("01HZZZZZZZZZZZZZZZZZZZZZZZ", dealer.Role("admin"), now)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = mgr.Issue("", dealer.RoleDealer, now)
	require.ErrorIs(t, err, ErrInvalidToken)
}
