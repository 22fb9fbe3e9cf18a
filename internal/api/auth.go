package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lalith-99/threadstream/internal/auth"
	"github.com/lalith-99/threadstream/internal/errs"
	"github.com/lalith-99/threadstream/internal/limiter"
	"github.com/lalith-99/threadstream/internal/models"
	"github.com/lalith-99/threadstream/internal/repository"
)

// AuthHandler serves the public identity endpoints. These don't go
// through AuthMiddleware because the caller doesn't have a JWT yet.
type AuthHandler struct {
	users     repository.UserRepository
	verifier  auth.GoogleVerifier
	limiter   limiter.Limiter
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(
	users repository.UserRepository,
	verifier auth.GoogleVerifier,
	lim limiter.Limiter,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:     users,
		verifier:  verifier,
		limiter:   lim,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type googleRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type userPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// authResponse is what register, login, and google all return. The
// client stores the token and sends it as "Authorization: Bearer
// <token>" on every subsequent request.
type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func toPayload(u *models.User) userPayload {
	return userPayload{
		ID:      u.ID.String(),
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	h.issueToken(c, user)
}

// Login handles POST /v1/auth/login.
//
// Failures are uniform: a missing account and a wrong password both
// return "invalid email or password" so the endpoint can't be used to
// enumerate registered emails.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := c.ClientIP()
	if h.limiter != nil {
		ok, err := h.limiter.Allow(c.Request.Context(), req.Email, ip)
		if err != nil {
			h.logger.Warn("login limiter unavailable", zap.Error(err))
		}
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
			return
		}
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if user == nil || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.recordFailure(c, req.Email, ip)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Success(c.Request.Context(), req.Email, ip); err != nil {
			h.logger.Warn("failed to reset login counter", zap.Error(err))
		}
	}
	h.issueToken(c, user)
}

// Google handles POST /v1/auth/google. The client sends a Google ID
// token; we verify it, then find-or-create the local account by email.
func (h *AuthHandler) Google(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid google credential"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), identity.Email)
	if err != nil {
		h.logger.Error("failed to look up user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	if user == nil {
		user, err = h.users.Create(c.Request.Context(), &models.User{
			Name:     identity.Name,
			Email:    identity.Email,
			Picture:  identity.Picture,
			GoogleID: identity.GoogleID,
		})
		if errors.Is(err, errs.ErrAlreadyExists) {
			// Lost a creation race with a concurrent sign-in for the
			// same email. The row exists now, so use it.
			user, err = h.users.GetByEmail(c.Request.Context(), identity.Email)
		}
		if err != nil || user == nil {
			h.logger.Error("failed to create google user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
			return
		}
	}

	h.issueToken(c, user)
}

// Verify handles POST /v1/auth/verify. It always answers 200: an
// invalid token is a normal answer here, not an error.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := auth.ParseToken(req.Token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to look up user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if user == nil {
		// Token is cryptographically fine but the account is gone.
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "user": toPayload(user)})
}

func (h *AuthHandler) recordFailure(c *gin.Context, email, ip string) {
	if h.limiter == nil {
		return
	}
	if err := h.limiter.Failure(c.Request.Context(), email, ip); err != nil {
		h.logger.Warn("failed to record login failure", zap.Error(err))
	}
}

func (h *AuthHandler) issueToken(c *gin.Context, user *models.User) {
	token, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: token, User: toPayload(user)})
}
