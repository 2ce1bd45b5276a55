package http

import (
	"context"
	"net/http"
	"time"

	"github.com/chibyk-cyber/pro-shop/internal/profile"
)

type ProfileService interface {
	Get(ctx context.Context, userID, email string) (*profile.Profile, error)
	Save(ctx context.Context, userID, email string, in profile.Profile) (*profile.Profile, error)
}

type ProfileHandler struct {
	profiles ProfileService
	timeout  time.Duration
}

func NewProfileHandler(profiles ProfileService, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, timeout: timeout}
}

type ProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.profiles.Get(ctx, sess.UserID, sess.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Save handles PUT /api/v1/profile
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.profiles.Save(ctx, sess.UserID, sess.Email, profile.Profile{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
