package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store used by tests and DB-less dev mode.
// One mutex covers every operation, so Rotate is atomic the same way the
// Postgres transaction is.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]Row
	byDigest map[string]string // token_digest -> session id
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]Row),
		byDigest: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, now time.Time, dealerID string, req RequestContext, tokenDigest string, expiresAt time.Time, rotatedFrom *string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(now, dealerID, req, tokenDigest, expiresAt, rotatedFrom), nil
}

func (s *MemoryStore) GetByID(_ context.Context, sessionID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byID[sessionID]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return row, nil
}

func (s *MemoryStore) FindActiveByDigest(_ context.Context, tokenDigest string, now time.Time) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byDigest[tokenDigest]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	row := s.byID[id]
	if !row.Usable(now) {
		return Row{}, ErrSessionNotFound
	}
	return row, nil
}

func (s *MemoryStore) Rotate(_ context.Context, now time.Time, tokenDigest string, next NextSession) (Row, Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byDigest[tokenDigest]
	if !ok {
		return Row{}, Row{}, ErrSessionNotFound
	}
	old := s.byID[id]

	if old.RevokedAt != nil {
		if !s.hasSuccessor(old.ID) {
			return Row{}, Row{}, ErrSessionRevoked
		}
		s.revokeAllLocked(now, old.DealerID)
		return Row{}, Row{}, ErrReuseDetected
	}

	if !old.ExpiresAt.After(now) {
		return Row{}, Row{}, ErrSessionExpired
	}

	revoked := now
	old.RevokedAt = &revoked
	s.byID[old.ID] = old

	created := s.insert(now, old.DealerID, next.Req, next.TokenDigest, next.ExpiresAt, &old.ID)
	return old, created, nil
}

func (s *MemoryStore) Revoke(_ context.Context, now time.Time, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byID[sessionID]
	if !ok || row.RevokedAt != nil {
		return nil
	}
	revoked := now
	row.RevokedAt = &revoked
	s.byID[sessionID] = row
	return nil
}

func (s *MemoryStore) RevokeAllForDealer(_ context.Context, now time.Time, dealerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeAllLocked(now, dealerID)
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, row := range s.byID {
		if !row.ExpiresAt.After(cutoff) {
			delete(s.byID, id)
			delete(s.byDigest, row.TokenDigest)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) insert(now time.Time, dealerID string, req RequestContext, tokenDigest string, expiresAt time.Time, rotatedFrom *string) Row {
	row := Row{
		ID:          ulid.Make().String(),
		DealerID:    dealerID,
		TokenDigest: tokenDigest,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
		RotatedFrom: rotatedFrom,
	}
	if req.UserAgent != "" {
		ua := req.UserAgent
		row.UserAgent = &ua
	}
	if req.IP != "" {
		ip := req.IP
		row.IP = &ip
	}
	s.byID[row.ID] = row
	s.byDigest[tokenDigest] = row.ID
	return row
}

func (s *MemoryStore) hasSuccessor(sessionID string) bool {
	for _, row := range s.byID {
		if row.RotatedFrom != nil && *row.RotatedFrom == sessionID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) revokeAllLocked(now time.Time, dealerID string) {
	for id, row := range s.byID {
		if row.DealerID == dealerID && row.RevokedAt == nil {
			revoked := now
			row.RevokedAt = &revoked
			s.byID[id] = row
		}
	}
}
