package dealer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresStore implements Store on the dealers table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed dealer store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, OpError{Op: "dealer.NewPostgresStore", Kind: ErrInvalidInput, Msg: "nil pool"}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Dealer, error) {
	const op = "dealer.Create"

	norm := NormalizeEmail(in.Email)
	if norm == "" || in.Name == "" || in.PasswordHash == "" {
		return Dealer{}, OpError{Op: op, Kind: ErrInvalidInput}
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

	_, err := s.pool.Exec(ctx, `
		INSERT INTO dealers (
			id, email, email_norm, name, phone, role, password_hash,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, d.ID, d.Email, d.EmailNorm, d.Name, d.Phone, string(d.Role), d.PasswordHash, in.Now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Dealer{}, ConflictError{Op: op, Field: "email"}
		}
		return Dealer{}, err
	}

	return d, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (Dealer, error) {
	return s.getOne(ctx, "dealer.GetByEmail", `
		SELECT id, email, email_norm, name, phone, role, password_hash,
		       created_at, updated_at
		FROM dealers
		WHERE email_norm = $1
	`, NormalizeEmail(email))
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Dealer, error) {
	return s.getOne(ctx, "dealer.GetByID", `
		SELECT id, email, email_norm, name, phone, role, password_hash,
		       created_at, updated_at
		FROM dealers
		WHERE id = $1
	`, id)
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Dealer, error) {
	const op = "dealer.UpdateProfile"

	tag, err := s.pool.Exec(ctx, `
		UPDATE dealers
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    updated_at = $4
		WHERE id = $1
	`, id, in.Name, in.Phone, in.Now)
	if err != nil {
		return Dealer{}, err
	}
	if tag.RowsAffected() == 0 {
		return Dealer{}, OpError{Op: op, Kind: ErrNotFound}
	}

	return s.GetByID(ctx, id)
}

func (s *PostgresStore) getOne(ctx context.Context, op, query string, arg any) (Dealer, error) {
	var (
		d    Dealer
		role string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&d.ID,
		&d.Email,
		&d.EmailNorm,
		&d.Name,
		&d.Phone,
		&role,
		&d.PasswordHash,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dealer{}, OpError{Op: op, Kind: ErrNotFound}
	}
	if err != nil {
		return Dealer{}, err
	}
	d.Role = Role(role)
	return d, nil
}
