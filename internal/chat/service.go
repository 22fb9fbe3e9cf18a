// Package chat orchestrates one conversation turn: persist the user's
// message, generate a reply, persist the reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/threadstream/internal/errs"
	"github.com/lalith-99/threadstream/internal/generator"
	"github.com/lalith-99/threadstream/internal/models"
	"github.com/lalith-99/threadstream/internal/repository"
	"github.com/lalith-99/threadstream/internal/upload"
	"go.uber.org/zap"
)

// titleLimit caps a thread title at the leading runes of its first message.
const titleLimit = 50

type Service struct {
	threads repository.ThreadRepository
	gen     generator.Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewService wires the turn orchestrator. timeout bounds a single
// generator call; zero falls back to 30s so a hung provider cannot pin
// the request forever.
func NewService(threads repository.ThreadRepository, gen generator.Generator, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{threads: threads, gen: gen, timeout: timeout, logger: logger}
}

// Turn runs one request/response cycle for (ownerID, threadID).
//
// The user's message is persisted before generation, so a provider
// failure never loses it; the client is told the turn failed and can
// retry against the same thread without duplicating the stored message.
// A persistence failure after generation loses the reply for storage
// but still returns it to the caller once.
func (s *Service) Turn(ctx context.Context, ownerID uuid.UUID, threadID, message string, files []upload.FileInfo) (string, error) {
	threadID = strings.TrimSpace(threadID)
	message = strings.TrimSpace(message)
	if threadID == "" || message == "" {
		return "", errs.ErrBadRequest
	}
	// Title comes from the first message only; the store ignores it on
	// the append path, so it is never re-derived.
	title := firstRunes(message, titleLimit)

	if len(files) > 0 {
		message += "\n\n" + upload.Annotation(files)
	}

	if err := s.appendUser(ctx, ownerID, threadID, title, message); err != nil {
		return "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.gen.Generate(genCtx, message)
	if err != nil {
		return "", err
	}

	if err := s.threads.CreateOrAppend(ctx, ownerID, threadID, title, models.RoleAssistant, reply); err != nil {
		// The caller has no way to ask for persistence of a reply it
		// never saw, so return the reply anyway and record the loss.
		s.logger.Error("assistant reply generated but not persisted",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
	}

	return reply, nil
}

// appendUser persists the user's message, recovering a lost creation
// race by retrying exactly once as an append.
func (s *Service) appendUser(ctx context.Context, ownerID uuid.UUID, threadID, title, message string) error {
	err := s.threads.CreateOrAppend(ctx, ownerID, threadID, title, models.RoleUser, message)
	if errors.Is(err, errs.ErrDuplicateThread) {
		err = s.threads.CreateOrAppend(ctx, ownerID, threadID, title, models.RoleUser, message)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
