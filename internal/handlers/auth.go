package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/plateful/plateful/internal/database"
	"github.com/plateful/plateful/internal/errs"
	"github.com/plateful/plateful/internal/logger"
	"github.com/plateful/plateful/internal/queue"
	"github.com/plateful/plateful/internal/request"
	"github.com/plateful/plateful/internal/token"
	"github.com/plateful/plateful/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandler handles account and token lifecycle requests.
type AuthHandler struct {
	users    database.UserStore
	issuer   *token.Issuer
	verifier *token.Verifier
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler. jobQueue may be nil, which
// disables password reset delivery.
func NewAuthHandler(users database.UserStore, issuer *token.Issuer, verifier *token.Verifier, jobQueue queue.JobQueue, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		issuer:   issuer,
		verifier: verifier,
		jobQueue: jobQueue,
		logger:   log,
	}
}

// RegisterRoutes registers the public auth routes on the given router.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sign-up", h.SignUp).Methods("POST")
	r.HandleFunc("/sign-in", h.SignIn).Methods("POST")
	r.HandleFunc("/token-refresh", h.TokenRefresh).Methods("POST")
	r.HandleFunc("/forgot-password", h.ForgotPassword).Methods("POST")
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates an account and returns its first token pair.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFromError(w, h.logger, err)
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	email, err := validation.NormalizeEmail(req.Email)
	if err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	user, err := h.users.Create(r.Context(), email, req.Password)
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	pair, err := h.issuer.Pair(user.ID.String())
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	h.logger.Info("account created", zap.String("user_id", user.ID.String()))
	respondJSON(w, http.StatusOK, pair)
}

// SignIn verifies credentials and returns a fresh token pair.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFromError(w, h.logger, err)
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	email, err := validation.NormalizeEmail(req.Email)
	if err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	user, err := h.users.VerifyPassword(r.Context(), email, req.Password)
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	pair, err := h.issuer.Pair(user.ID.String())
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenRefresh exchanges a valid refresh token for a new pair. The account
// must still exist: a token for a deleted user is rejected the same way as
// an invalid one.
func (h *AuthHandler) TokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFromError(w, h.logger, err)
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	claims, err := h.verifier.VerifyRefresh(req.RefreshToken)
	if err != nil {
		h.logger.Debug("refresh token rejected", zap.String("reason", logger.SanitizeError(err)))
		respondFromError(w, h.logger, errs.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		respondFromError(w, h.logger, errs.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondFromError(w, h.logger, errs.ErrUnauthorized)
			return
		}
		respondFromError(w, h.logger, err)
		return
	}

	pair, err := h.issuer.Pair(user.ID.String())
	if err != nil {
		respondFromError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, pair)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ForgotPassword enqueues a reset email for a known account. The response
// distinguishes unknown accounts, matching the public contract.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFromError(w, h.logger, err)
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondFromError(w, h.logger, errs.ErrValidation)
		return
	}

	email, err := validation.NormalizeEmail(req.Email)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "error", "message": "User not found"})
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "error", "message": "User not found"})
			return
		}
		respondFromError(w, h.logger, err)
		return
	}

	if h.jobQueue != nil {
		job := queue.NewJob(queue.JobTypePasswordReset, user.ID, user.Email)
		if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
			h.logger.Error("failed to enqueue password reset job",
				zap.String("user_id", user.ID.String()),
				zap.String("error", logger.SanitizeError(err)),
			)
			respondError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the authenticated account's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	subject := request.SubjectFromContext(r)
	if subject == "" {
		respondFromError(w, h.logger, errs.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		respondFromError(w, h.logger, errs.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondFromError(w, h.logger, errs.ErrUnauthorized)
			return
		}
		respondFromError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}
