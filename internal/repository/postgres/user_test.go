package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lalith-99/threadstream/internal/errs"
	"github.com/lalith-99/threadstream/internal/models"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

// uniqueViolation fabricates the Postgres duplicate-key error.
func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

const (
	insUserRe        = `INSERT INTO users \(name, email, picture, google_id, password_hash, created_at\) VALUES \(\$1, \$2, \$3, \$4, \$5, now\(\)\) RETURNING id, name, email, picture, google_id, password_hash, created_at`
	selUserByEmailRe = `SELECT id, name, email, picture, google_id, password_hash, created_at FROM users WHERE email=\$1`
)

func userColumns() []string {
	return []string{"id", "name", "email", "picture", "google_id", "password_hash", "created_at"}
}

func TestUserStore_Create_OK(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewUserStore(mock)

	id := uuid.New()
	mock.ExpectQuery(insUserRe).
		WithArgs("Ada", "ada@example.com", "", "", "hash").
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(id, "Ada", "ada@example.com", "", "", "hash", time.Now()))

	u, err := s.Create(context.Background(), &models.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Create_DuplicateEmail(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewUserStore(mock)

	mock.ExpectQuery(insUserRe).
		WithArgs("Ada", "ada@example.com", "", "", "hash").
		WillReturnError(uniqueViolation())

	_, err := s.Create(context.Background(), &models.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserStore_GetByEmail(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewUserStore(mock)

	id := uuid.New()
	mock.ExpectQuery(selUserByEmailRe).
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(id, "Ada", "ada@example.com", "", "", "hash", time.Now()))

	u, err := s.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	// Absent email is nil, nil, not an error.
	mock.ExpectQuery(selUserByEmailRe).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	u, err = s.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUserStore_GetByID_Absent(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewUserStore(mock)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, email, picture, google_id, password_hash, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	u, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Nil(t, u)
}
