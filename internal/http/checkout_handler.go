package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	d "github.com/chibyk-cyber/pro-shop/internal/checkout/domain"
	"github.com/chibyk-cyber/pro-shop/internal/session"
)

type CheckoutService interface {
	Initiate(ctx context.Context, sess *session.Session) (*d.CheckoutResponse, error)
	Verify(ctx context.Context, sess *session.Session, reference string) (*d.VerifyResponse, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout}
}

type VerifyRequest struct {
	Reference string `json:"reference"`
}

// Initiate handles POST /api/v1/checkout
func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.checkout.Initiate(ctx, sess)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Verify handles POST /api/v1/checkout/verify. The reference comes from the
// JSON body or from the query, where a client can forward the reference or
// trxref parameter of the provider's callback URL unchanged.
func (h *CheckoutHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req VerifyRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Reference == "" {
		req.Reference = r.URL.Query().Get("reference")
	}
	if req.Reference == "" {
		req.Reference = r.URL.Query().Get("trxref")
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.checkout.Verify(ctx, sess, strings.TrimSpace(req.Reference))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
