package dealer

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role tags the principal kind embedded in access-token claims. Verification
// is exhaustive over known roles; anything else is rejected.
type Role string

const (
	// RoleDealer is the business account role.
	RoleDealer Role = "dealer"
	// RoleCustomer is reserved for the end-customer principal.
	RoleCustomer Role = "customer"
)

// KnownRole reports whether r is one of the roles this service issues.
func KnownRole(r Role) bool {
	switch r {
	case RoleDealer, RoleCustomer:
		return true
	default:
		return false
	}
}

// Dealer is an authenticated business account.
// PasswordHash is the Argon2id PHC string; it is never serialized to clients.
type Dealer struct {
	ID           string
	Email        string
	EmailNorm    string
	Name         string
	Phone        *string
	Role         Role
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput describes a registration request. Email is stored as given and
// additionally in normalized form for uniqueness.
type CreateInput struct {
	Email        string
	Name         string
	Phone        *string
	PasswordHash string
	Now          time.Time
}

// UpdateProfileInput mutates the mutable profile fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Name  *string
	Phone *string
	Now   time.Time
}

// Store is the dealer persistence boundary.
//
// Dealers are never hard-deleted through this interface.
type Store interface {
	// Create inserts a new dealer. A normalized-email collision yields
	// ConflictError{Field: "email"}.
	Create(ctx context.Context, in CreateInput) (Dealer, error)

	// GetByEmail loads a dealer by normalized email. Missing -> ErrNotFound.
	GetByEmail(ctx context.Context, email string) (Dealer, error)

	// GetByID loads a dealer by id. Missing -> ErrNotFound.
	GetByID(ctx context.Context, id string) (Dealer, error)

	// UpdateProfile applies a partial profile update. Missing -> ErrNotFound.
	UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Dealer, error)
}

// NewID returns a new ULID for a dealer row.
func NewID() string {
	return ulid.Make().String()
}
