package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lalith-99/threadstream/internal/errs"
	"github.com/lalith-99/threadstream/internal/middleware"
	"github.com/lalith-99/threadstream/internal/repository"
	"github.com/lalith-99/threadstream/internal/upload"
)

// TurnService runs one conversation turn. *chat.Service implements it.
type TurnService interface {
	Turn(ctx context.Context, ownerID uuid.UUID, threadID, message string, files []upload.FileInfo) (string, error)
}

// ChatHandler serves the authenticated chat endpoints.
type ChatHandler struct {
	svc     TurnService
	threads repository.ThreadRepository
	logger  *zap.Logger
}

func NewChatHandler(svc TurnService, threads repository.ThreadRepository, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, threads: threads, logger: logger}
}

type filePayload struct {
	Name          string `json:"name" binding:"required"`
	SizeFormatted string `json:"size"`
	IsImage       bool   `json:"isImage"`
	IsDocument    bool   `json:"isDocument"`
	IsArchive     bool   `json:"isArchive"`
	IsText        bool   `json:"isText"`
	Lines         int    `json:"lines"`
}

type turnRequest struct {
	ThreadID string        `json:"threadId" binding:"required"`
	Message  string        `json:"message"`
	Files    []filePayload `json:"files"`
}

type turnResponse struct {
	Reply string `json:"reply"`
}

// Turn handles POST /v1/chat. One user message in, one assistant
// reply out; both ends of the turn are persisted on the thread.
func (h *ChatHandler) Turn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files := make([]upload.FileInfo, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, upload.FileInfo{
			Name:          f.Name,
			SizeFormatted: f.SizeFormatted,
			IsImage:       f.IsImage,
			IsDocument:    f.IsDocument,
			IsArchive:     f.IsArchive,
			IsText:        f.IsText,
			Lines:         f.Lines,
		})
	}

	reply, err := h.svc.Turn(c.Request.Context(), middleware.GetUserID(c), req.ThreadID, req.Message, files)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turnResponse{Reply: reply})
}

// ListThreads handles GET /v1/chat/threads.
func (h *ChatHandler) ListThreads(c *gin.Context) {
	summaries, err := h.threads.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": summaries})
}

// GetThread handles GET /v1/chat/threads/:threadId.
func (h *ChatHandler) GetThread(c *gin.Context) {
	threadID := c.Param("threadId")
	messages, err := h.threads.FetchMessages(c.Request.Context(), middleware.GetUserID(c), threadID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threadId": threadID, "messages": messages})
}

// DeleteThread handles DELETE /v1/chat/threads/:threadId.
func (h *ChatHandler) DeleteThread(c *gin.Context) {
	threadID := c.Param("threadId")
	if err := h.threads.Delete(c.Request.Context(), middleware.GetUserID(c), threadID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": threadID})
}

// writeError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body; the detail goes to the
// log, not the client.
func (h *ChatHandler) writeError(c *gin.Context, err error) {
	var provErr *errs.ProviderError
	switch {
	case errors.Is(err, errs.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
	case errors.Is(err, errs.ErrAlreadyExists), errors.Is(err, errs.ErrDuplicateThread):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
	case errors.As(err, &provErr):
		h.logger.Warn("model provider error",
			zap.Int("provider_status", provErr.Status),
			zap.String("detail", provErr.Detail),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "model provider unavailable"})
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
