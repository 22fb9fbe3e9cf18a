package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role tags a message as authored by the user or the assistant.
// It is a closed two-variant set: anything else is rejected at the
// boundary, and casing is normalized before a role is ever stored.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole normalizes a raw role string to one of the two valid roles.
// Returns false for anything outside the closed set.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleAssistant:
		return RoleAssistant, true
	}
	return "", false
}

// User is an account holder. PasswordHash is empty for accounts that
// only ever signed in through Google; GoogleID is empty for accounts
// that only ever registered with a password.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Picture      string    `json:"picture,omitempty"`
	GoogleID     string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Thread is one conversation. The pair (OwnerID, ThreadID) is unique,
// enforced by a database constraint rather than an application check, so two
// concurrent first turns for the same client-chosen id can never
// produce two rows.
type Thread struct {
	ID        int64     `json:"-"`
	OwnerID   uuid.UUID `json:"-"`
	ThreadID  string    `json:"threadId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ThreadSummary is the listing projection: enough to render a sidebar
// entry, never the message bodies.
type ThreadSummary struct {
	ThreadID  string    `json:"threadId"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one turn's text inside a thread. Messages are append-only
// and ordered by their bigserial id.
type Message struct {
	ID        int64     `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}
