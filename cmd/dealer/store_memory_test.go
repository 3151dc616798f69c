package dealer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()

	d, err := s.Create(context.Background(), CreateInput{
		Email:        "Sales@Example.COM",
		Name:         "Example Motors",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$AAAA$AAAA",
		Now:          now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)
	require.Equal(t, "Sales@Example.COM", d.Email)
	require.Equal(t, "sales@example.com", d.EmailNorm)
	require.Equal(t, RoleDealer, d.Role)

	// Lookup is case-insensitive over the normalized form.
	got, err := s.GetByEmail(context.Background(), "  sales@EXAMPLE.com ")
	require.NoError(t, err)
	require.Equal(t, d.ID, got.ID)

	got, err = s.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, d.EmailNorm, got.EmailNorm)
}

func TestMemoryStore_DuplicateEmailConflicts(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()

	_, err := s.Create(context.Background(), CreateInput{
		Email:        "sales@example.com",
		Name:         "Example Motors",
		PasswordHash: "h",
		Now:          now,
	})
	require.NoError(t, err)

	_, err = s.Create(context.Background(), CreateInput{
		Email:        "SALES@example.com",
		Name:         "Someone Else",
		PasswordHash: "h",
		Now:          now,
	})
	require.True(t, IsConflict(err), "expected conflict, got %v", err)

	var ce ConflictError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "email", ce.Field)
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Create(context.Background(), CreateInput{Email: "", Name: "n", PasswordHash: "h"})
	require.True(t, IsInvalidInput(err))

	_, err = s.Create(context.Background(), CreateInput{Email: "a@b.c", Name: "", PasswordHash: "h"})
	require.True(t, IsInvalidInput(err))
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetByEmail(context.Background(), "nobody@example.com")
	require.True(t, IsNotFound(err))

	_, err = s.GetByID(context.Background(), "no-such-id")
	require.True(t, IsNotFound(err))

	_, err = s.UpdateProfile(context.Background(), "no-such-id", UpdateProfileInput{})
	require.True(t, IsNotFound(err))
}

func TestMemoryStore_UpdateProfilePartial(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()

	d, err := s.Create(context.Background(), CreateInput{
		Email:        "sales@example.com",
		Name:         "Example Motors",
		PasswordHash: "h",
		Now:          now,
	})
	require.NoError(t, err)

	name := "Example Motors GmbH"
	later := now.Add(time.Hour)
	got, err := s.UpdateProfile(context.Background(), d.ID, UpdateProfileInput{Name: &name, Now: later})
	require.NoError(t, err)
	require.Equal(t, name, got.Name)
	require.Nil(t, got.Phone)
	require.Equal(t, later, got.UpdatedAt)

	phone := "+49 30 1234567"
	got, err = s.UpdateProfile(context.Background(), d.ID, UpdateProfileInput{Phone: &phone, Now: later})
	require.NoError(t, err)
	require.Equal(t, name, got.Name)
	require.NotNil(t, got.Phone)
	require.Equal(t, phone, *got.Phone)
}
