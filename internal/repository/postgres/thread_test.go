package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/threadstream/internal/errs"
	"github.com/lalith-99/threadstream/internal/models"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

const (
	selThreadRe = `SELECT id FROM threads WHERE owner_id=\$1 AND thread_id=\$2`
	insThreadRe = `INSERT INTO threads \(owner_id, thread_id, title, created_at, updated_at\) VALUES \(\$1, \$2, \$3, now\(\), now\(\)\) RETURNING id`
	insMsgRe    = `INSERT INTO messages \(thread_ref, role, content, created_at\) VALUES \(\$1, \$2, \$3, now\(\)\)`
	touchRe     = `UPDATE threads SET updated_at=now\(\) WHERE id=\$1`
)

func TestThreadStore_CreateOrAppend_CreatesNewThread(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selThreadRe).
		WithArgs(owner, "t1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(insThreadRe).
		WithArgs(owner, "t1", "hello").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(insMsgRe).
		WithArgs(int64(7), "user", "hello").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.CreateOrAppend(context.Background(), owner, "t1", "hello", models.RoleUser, "hello")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadStore_CreateOrAppend_AppendsToExisting(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selThreadRe).
		WithArgs(owner, "t1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(insMsgRe).
		WithArgs(int64(7), "assistant", "hi there").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(touchRe).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := s.CreateOrAppend(context.Background(), owner, "t1", "", models.RoleAssistant, "hi there")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadStore_CreateOrAppend_LostRaceReturnsDuplicate(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selThreadRe).
		WithArgs(owner, "t1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(insThreadRe).
		WithArgs(owner, "t1", "hello").
		WillReturnError(uniqueViolation())
	mock.ExpectRollback()

	err := s.CreateOrAppend(context.Background(), owner, "t1", "hello", models.RoleUser, "hello")
	require.ErrorIs(t, err, errs.ErrDuplicateThread)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadStore_List(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()
	newer := time.Now()
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`SELECT thread_id, title, updated_at FROM threads WHERE owner_id=\$1 ORDER BY updated_at DESC`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"thread_id", "title", "updated_at"}).
			AddRow("t2", "second", newer).
			AddRow("t1", "first", older))

	got, err := s.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "t2", got[0].ThreadID)
	require.Equal(t, "t1", got[1].ThreadID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadStore_List_Empty(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()
	mock.ExpectQuery(`SELECT thread_id, title, updated_at FROM threads WHERE owner_id=\$1 ORDER BY updated_at DESC`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"thread_id", "title", "updated_at"}))

	got, err := s.List(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestThreadStore_FetchMessages_InOrder(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(selThreadRe).
		WithArgs(owner, "t1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(`SELECT role, content, created_at FROM messages WHERE thread_ref=\$1 ORDER BY id ASC`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"role", "content", "created_at"}).
			AddRow("user", "hello", now).
			AddRow("assistant", "hi there", now))

	msgs, err := s.FetchMessages(context.Background(), owner, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, models.RoleUser, msgs[0].Role)
	require.Equal(t, models.RoleAssistant, msgs[1].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadStore_FetchMessages_NotFound(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()
	mock.ExpectQuery(selThreadRe).
		WithArgs(owner, "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.FetchMessages(context.Background(), owner, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestThreadStore_Delete(t *testing.T) {
	mock := newPool(t)
	defer mock.Close()
	s := NewThreadStore(mock)

	owner := uuid.New()

	mock.ExpectExec(`DELETE FROM threads WHERE owner_id=\$1 AND thread_id=\$2`).
		WithArgs(owner, "t1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.Delete(context.Background(), owner, "t1"))

	mock.ExpectExec(`DELETE FROM threads WHERE owner_id=\$1 AND thread_id=\$2`).
		WithArgs(owner, "gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	err := s.Delete(context.Background(), owner, "gone")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
