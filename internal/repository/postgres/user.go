package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/threadstream/internal/errs"
	"github.com/lalith-99/threadstream/internal/models"
)

type UserStore struct {
	pool PgxPool
}

func NewUserStore(pool PgxPool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts a new user row. The unique index on email turns a
// concurrent double-registration into ErrAlreadyExists for the loser.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	const q = `
INSERT INTO users (name, email, picture, google_id, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING id, name, email, picture, google_id, password_hash, created_at`

	var out models.User
	err := s.pool.QueryRow(ctx, q, u.Name, u.Email, u.Picture, u.GoogleID, u.PasswordHash).Scan(
		&out.ID,
		&out.Name,
		&out.Email,
		&out.Picture,
		&out.GoogleID,
		&out.PasswordHash,
		&out.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &out, nil
}

// GetByEmail looks a user up by email. nil, nil when absent.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
SELECT id, name, email, picture, google_id, password_hash, created_at
FROM users
WHERE email=$1`

	var u models.User
	err := s.pool.QueryRow(ctx, q, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Picture,
		&u.GoogleID,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// GetByID looks a user up by id. nil, nil when absent.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `
SELECT id, name, email, picture, google_id, password_hash, created_at
FROM users
WHERE id=$1`

	var u models.User
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Picture,
		&u.GoogleID,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}
