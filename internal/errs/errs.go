// Package errs contains sentinel errors shared across layers for stable
// error mapping at the HTTP boundary.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested thread does not exist for this
	// owner. Cross-owner probes produce the same error as true absence.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates a missing, invalid, or expired credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrBadRequest indicates an empty thread identifier or message.
	ErrBadRequest = errors.New("bad request")

	// ErrDuplicateThread is the internal signal that a thread-creation race
	// was lost. It is always recovered by retrying as an append and never
	// reaches a client.
	ErrDuplicateThread = errors.New("duplicate thread")

	// ErrAlreadyExists indicates a unique constraint violation on a user
	// (email already registered).
	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreUnavailable indicates the persistence layer is unreachable or
	// the duplicate-thread retry was exhausted.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRateLimited indicates a temporary login lockout.
	ErrRateLimited = errors.New("rate limited")
)

// ProviderError reports a reply-generator failure: timeout, non-2xx
// response, or malformed payload. Status is the upstream HTTP status
// when one exists, 0 otherwise.
type ProviderError struct {
	Status int
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("provider error: %s", e.Detail)
}
