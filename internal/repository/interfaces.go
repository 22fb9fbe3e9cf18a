package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/threadstream/internal/models"
)

// ThreadRepository owns persisted conversations. Every method is scoped
// to an owner: a thread id that exists for somebody else behaves exactly
// like one that never existed.
type ThreadRepository interface {
	// CreateOrAppend appends a message to the thread identified by
	// (ownerID, threadID), creating the thread first if it does not
	// exist. The create path relies on the (owner_id, thread_id) unique
	// constraint: the loser of a concurrent creation race gets
	// errs.ErrDuplicateThread, which callers retry as an append.
	// title is used only when a new thread row is created.
	CreateOrAppend(ctx context.Context, ownerID uuid.UUID, threadID, title string, role models.Role, content string) error

	// List returns the owner's thread summaries, newest updated first.
	// Returns an empty slice (not nil) so JSON serializes to [].
	List(ctx context.Context, ownerID uuid.UUID) ([]models.ThreadSummary, error)

	// FetchMessages returns a thread's messages in append order.
	// errs.ErrNotFound when no thread matches (ownerID, threadID).
	FetchMessages(ctx context.Context, ownerID uuid.UUID, threadID string) ([]models.Message, error)

	// Delete removes a thread and all its messages atomically.
	// errs.ErrNotFound when no thread matches (ownerID, threadID).
	Delete(ctx context.Context, ownerID uuid.UUID, threadID string) error
}

// UserRepository provides account storage for the identity gate.
type UserRepository interface {
	// Create inserts a new user. errs.ErrAlreadyExists if the email is
	// taken (users.email carries a unique constraint).
	Create(ctx context.Context, u *models.User) (*models.User, error)

	// GetByEmail returns nil, nil when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns nil, nil when the id is unknown.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
