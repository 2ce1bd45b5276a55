package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chibyk-cyber/pro-shop/internal/auth/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

type AuthHandler struct {
	auth     AuthService
	sessions SessionStore
	carts    CartClearer
	timeout  time.Duration
	log      *slog.Logger
}

func NewAuthHandler(auth AuthService, sessions SessionStore, carts CartClearer, timeout time.Duration, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, carts: carts, timeout: timeout, log: log}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}

	sess, err := h.sessions.Create(ctx, user)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: sess.Token, User: toUserResponse(user)})
}

// Logout handles POST /api/v1/auth/logout. The session is dropped and the
// cart emptied.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.sessions.Delete(ctx, sess.Token); err != nil {
		handleError(w, r, err)
		return
	}
	if err := h.carts.ClearCart(ctx, sess.UserID); err != nil {
		h.log.WarnContext(ctx, "failed to clear cart on logout",
			slog.String("user_id", sess.UserID),
			slog.String("error", err.Error()))
	}

	w.WriteHeader(http.StatusNoContent)
}
