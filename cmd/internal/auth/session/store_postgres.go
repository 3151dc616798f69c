package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store on the sessions table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const sessionColumns = `
	id, dealer_id, token_digest,
	created_at, expires_at, revoked_at,
	rotated_from, user_agent, ip
`

func (s *PostgresStore) Create(ctx context.Context, now time.Time, dealerID string, req RequestContext, tokenDigest string, expiresAt time.Time, rotatedFrom *string) (Row, error) {
	return insertSession(ctx, s.pool, now, dealerID, req, tokenDigest, expiresAt, rotatedFrom)
}

func (s *PostgresStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	return scanOne(s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = $1
	`, sessionID))
}

func (s *PostgresStore) FindActiveByDigest(ctx context.Context, tokenDigest string, now time.Time) (Row, error) {
	return scanOne(s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE token_digest = $1
		  AND revoked_at IS NULL
		  AND expires_at > $2
	`, tokenDigest, now))
}

// Rotate runs the exchange inside one transaction. The row lock taken by
// SELECT ... FOR UPDATE is the linearization point: a concurrent exchange of
// the same token blocks here and then observes the revoked row.
func (s *PostgresStore) Rotate(ctx context.Context, now time.Time, tokenDigest string, next NextSession) (Row, Row, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Row{}, Row{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := scanOne(tx.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE token_digest = $1
		FOR UPDATE
	`, tokenDigest))
	if err != nil {
		return Row{}, Row{}, err
	}

	if old.RevokedAt != nil {
		var rotated bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM sessions WHERE rotated_from = $1)
		`, old.ID).Scan(&rotated); err != nil {
			return Row{}, Row{}, err
		}
		if !rotated {
			return Row{}, Row{}, ErrSessionRevoked
		}

		// A spent token came back: assume the lineage is compromised and
		// revoke the dealer's whole session set.
		if _, err := tx.Exec(ctx, `
			UPDATE sessions
			SET revoked_at = COALESCE(revoked_at, $2)
			WHERE dealer_id = $1
		`, old.DealerID, now); err != nil {
			return Row{}, Row{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return Row{}, Row{}, err
		}
		return Row{}, Row{}, ErrReuseDetected
	}

	if !old.ExpiresAt.After(now) {
		return Row{}, Row{}, ErrSessionExpired
	}

	// Conditional revoke: under the row lock this always hits, but the
	// predicate keeps the single-use invariant even if locking semantics
	// ever change.
	tag, err := tx.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`, old.ID, now)
	if err != nil {
		return Row{}, Row{}, err
	}
	if tag.RowsAffected() == 0 {
		return Row{}, Row{}, ErrSessionRevoked
	}

	created, err := insertSession(ctx, tx, now, old.DealerID, next.Req, next.TokenDigest, next.ExpiresAt, &old.ID)
	if err != nil {
		return Row{}, Row{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Row{}, Row{}, err
	}

	revoked := now
	old.RevokedAt = &revoked
	return old, created, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, now time.Time, sessionID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE id = $1
	`, sessionID, now)
	return err
}

func (s *PostgresStore) RevokeAllForDealer(ctx context.Context, now time.Time, dealerID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE dealer_id = $1
	`, dealerID, now)
	return err
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at <= $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// querier covers both pgxpool.Pool and pgx.Tx for inserts.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSession(ctx context.Context, q querier, now time.Time, dealerID string, req RequestContext, tokenDigest string, expiresAt time.Time, rotatedFrom *string) (Row, error) {
	id := ulid.Make().String()

	return scanOne(q.QueryRow(ctx, `
		INSERT INTO sessions (
			id, dealer_id, token_digest,
			created_at, expires_at, revoked_at,
			rotated_from, user_agent, ip
		) VALUES ($1, $2, $3, $4, $5, NULL, $6, $7, $8)
		RETURNING `+sessionColumns+`
	`, id, dealerID, tokenDigest, now, expiresAt, rotatedFrom, nullIfEmpty(req.UserAgent), nullIfEmpty(req.IP)))
}

func scanOne(r pgx.Row) (Row, error) {
	var row Row
	err := r.Scan(
		&row.ID,
		&row.DealerID,
		&row.TokenDigest,
		&row.CreatedAt,
		&row.ExpiresAt,
		&row.RevokedAt,
		&row.RotatedFrom,
		&row.UserAgent,
		&row.IP,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}
	return row, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
