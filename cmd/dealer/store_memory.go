package dealer

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and DB-less dev mode.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Dealer
	byEmail map[string]string // email_norm -> id
}

// NewMemoryStore creates an empty in-memory dealer store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Dealer),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, in CreateInput) (Dealer, error) {
	const op = "dealer.Create"

	norm := NormalizeEmail(in.Email)
	if norm == "" || in.Name == "" || in.PasswordHash == "" {
		return Dealer{}, OpError{Op: op, Kind: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[norm]; exists {
		return Dealer{}, ConflictError{Op: op, Field: "email"}
	}

	d := Dealer{
		ID:           NewID(),
		Email:        in.Email,
		EmailNorm:    norm,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         RoleDealer,
		PasswordHash: in.PasswordHash,
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}
	s.byID[d.ID] = d
	s.byEmail[norm] = d.ID
	return d, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return Dealer{}, OpError{Op: "dealer.GetByEmail", Kind: ErrNotFound}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return Dealer{}, OpError{Op: "dealer.GetByID", Kind: ErrNotFound}
	}
	return d, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id string, in UpdateProfileInput) (Dealer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[id]
	if !ok {
		return Dealer{}, OpError{Op: "dealer.UpdateProfile", Kind: ErrNotFound}
	}
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Phone != nil {
		d.Phone = in.Phone
	}
	d.UpdatedAt = in.Now
	s.byID[id] = d
	return d, nil
}

// Delete removes a dealer row. It exists only so tests can model a deleted
// account during refresh; the HTTP surface never exposes it.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.byID[id]; ok {
		delete(s.byEmail, d.EmailNorm)
		delete(s.byID, id)
	}
}
