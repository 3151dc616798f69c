package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dealerdesk/cmd/dealer"
)

// AccessClaims is the verified identity envelope carried by access tokens.
// Verification needs only the signing secret; there is no database lookup.
type AccessClaims struct {
	DealerID  string
	Role      dealer.Role
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessTokenManager issues and verifies short-lived access tokens.
type AccessTokenManager interface {
	Issue(dealerID string, role dealer.Role, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

type jwtClaims struct {
	jwt.RegisteredClaims
	DealerID string `json:"dealerId"`
	Role     string `json:"role"`
}

// JWTManager implements AccessTokenManager with symmetric HS256 signing.
type JWTManager struct {
	issuer string
	ttl    time.Duration
	secret []byte
}

// NewJWTManager builds the access-token manager from config.
func NewJWTManager(cfg Config) (*JWTManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &JWTManager{
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		secret: []byte(cfg.JWTSecret),
	}, nil
}

// Issue mints a signed access token embedding {dealerId, role}. Unknown roles
// are rejected so every token this service signs verifies exhaustively.
func (m *JWTManager) Issue(dealerID string, role dealer.Role, now time.Time) (string, time.Time, error) {
	if dealerID == "" || !dealer.KnownRole(role) {
		return "", time.Time{}, ErrInvalidToken
	}

	exp := now.Add(m.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		DealerID: dealerID,
		Role:     string(role),
	})

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates an access token. Expired or tampered tokens
// fail deterministically with ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string, now time.Time) (AccessClaims, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return AccessClaims{}, ErrInvalidToken
	}

	role := dealer.Role(claims.Role)
	if claims.DealerID == "" || !dealer.KnownRole(role) {
		return AccessClaims{}, ErrInvalidToken
	}

	out := AccessClaims{
		DealerID: claims.DealerID,
		Role:     role,
		Issuer:   claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
