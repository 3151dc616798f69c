package dealer

import (
	"context"

	"dealerdesk/cmd/security/password"
)

// VerifyCredentials looks a dealer up by normalized email and checks the
// password against the stored hash.
//
// Failure contract:
//   - unknown email           -> ErrNotFound
//   - password mismatch       -> ErrBadCredentials
//   - malformed stored hash   -> ErrBadCredentials (logged upstream as 5xx-worthy)
//
// No side effects.
func VerifyCredentials(ctx context.Context, store Store, pw password.Config, email, plain string) (Dealer, error) {
	d, err := store.GetByEmail(ctx, email)
	if err != nil {
		return Dealer{}, err
	}

	ok, err := pw.Verify(d.PasswordHash, plain)
	if err != nil || !ok {
		return Dealer{}, OpError{Op: "dealer.VerifyCredentials", Kind: ErrBadCredentials}
	}

	return d, nil
}
