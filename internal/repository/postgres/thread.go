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

type ThreadStore struct {
	pool PgxPool
}

func NewThreadStore(pool PgxPool) *ThreadStore {
	return &ThreadStore{pool: pool}
}

// CreateOrAppend appends one message to (ownerID, threadID), creating
// the thread row first when none exists. Creation is guarded by the
// (owner_id, thread_id) unique index: when two first turns race, the
// second insert fails with 23505 and surfaces as ErrDuplicateThread so
// the caller can retry as a plain append.
func (s *ThreadStore) CreateOrAppend(
	ctx context.Context, ownerID uuid.UUID, threadID, title string, role models.Role, content string,
) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const sel = `SELECT id FROM threads WHERE owner_id=$1 AND thread_id=$2`
	const ins = `INSERT INTO threads (owner_id, thread_id, title, created_at, updated_at)
VALUES ($1, $2, $3, now(), now()) RETURNING id`
	const msg = `INSERT INTO messages (thread_ref, role, content, created_at)
VALUES ($1, $2, $3, now())`
	const touch = `UPDATE threads SET updated_at=now() WHERE id=$1`

	var ref int64
	scanErr := tx.QueryRow(ctx, sel, ownerID, threadID).Scan(&ref)
	switch {
	case scanErr == nil:
		if _, err = tx.Exec(ctx, msg, ref, string(role), content); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		if _, err = tx.Exec(ctx, touch, ref); err != nil {
			return fmt.Errorf("touch thread: %w", err)
		}
	case errors.Is(scanErr, pgx.ErrNoRows):
		if err = tx.QueryRow(ctx, ins, ownerID, threadID, title).Scan(&ref); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrDuplicateThread
			}
			return fmt.Errorf("insert thread: %w", err)
		}
		if _, err = tx.Exec(ctx, msg, ref, string(role), content); err != nil {
			return fmt.Errorf("insert first message: %w", err)
		}
	default:
		return fmt.Errorf("resolve thread: %w", scanErr)
	}
	return nil
}

// List returns summaries only: id, title, updated_at. Message bodies
// stay out of the listing.
func (s *ThreadStore) List(ctx context.Context, ownerID uuid.UUID) ([]models.ThreadSummary, error) {
	const q = `
SELECT thread_id, title, updated_at
FROM threads
WHERE owner_id=$1
ORDER BY updated_at DESC`

	rows, err := s.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ThreadSummary, 0)
	for rows.Next() {
		var sum models.ThreadSummary
		if err := rows.Scan(&sum.ThreadID, &sum.Title, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan thread summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate threads: %w", err)
	}
	return summaries, nil
}

// FetchMessages returns the thread's messages in append order. A thread
// owned by someone else produces the same ErrNotFound as a thread that
// never existed.
func (s *ThreadStore) FetchMessages(ctx context.Context, ownerID uuid.UUID, threadID string) ([]models.Message, error) {
	const sel = `SELECT id FROM threads WHERE owner_id=$1 AND thread_id=$2`

	var ref int64
	if err := s.pool.QueryRow(ctx, sel, ownerID, threadID).Scan(&ref); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("resolve thread: %w", err)
	}

	const q = `
SELECT role, content, created_at
FROM messages
WHERE thread_ref=$1
ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, q, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			m    models.Message
			role string
		)
		if err := rows.Scan(&role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = models.Role(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// Delete removes the thread row; messages go with it via ON DELETE
// CASCADE, so deletion is all-or-nothing.
func (s *ThreadStore) Delete(ctx context.Context, ownerID uuid.UUID, threadID string) error {
	const q = `DELETE FROM threads WHERE owner_id=$1 AND thread_id=$2`

	tag, err := s.pool.Exec(ctx, q, ownerID, threadID)
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
