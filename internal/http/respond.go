package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	cartsvc "github.com/chibyk-cyber/pro-shop/internal/cart/service"
	ordersrepo "github.com/chibyk-cyber/pro-shop/internal/orders/repository"
	"github.com/chibyk-cyber/pro-shop/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields and
// trailing data.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

// handleError converts an error from the service layer into an HTTP response.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *apperr.ValidationError
		authErr       *apperr.AuthError
		configErr     *apperr.ConfigError
		initErr       *payment.TransactionInitError
		verifyErr     *payment.TransactionVerifyError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.As(err, &authErr):
		switch authErr.Reason {
		case apperr.AuthDuplicateUser:
			respondError(w, http.StatusConflict, string(authErr.Reason), authErr.Message)
		case apperr.AuthForbidden:
			respondError(w, http.StatusForbidden, string(authErr.Reason), authErr.Message)
		default:
			respondError(w, http.StatusUnauthorized, string(authErr.Reason), authErr.Message)
		}
	case errors.As(err, &configErr):
		respondError(w, http.StatusServiceUnavailable, "feature_disabled", configErr.Message)
	case errors.As(err, &initErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "payment provider could not start the transaction",
			Code:    "transaction_init_failed",
			Details: providerDetails(initErr.Body, initErr.Err),
		})
	case errors.As(err, &verifyErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "payment provider could not verify the transaction",
			Code:    "transaction_verify_failed",
			Details: providerDetails(verifyErr.Body, verifyErr.Err),
		})
	case errors.Is(err, ordersrepo.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, cartsvc.ErrItemNotInCart):
		respondError(w, http.StatusNotFound, "not_found", "item not in cart")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func providerDetails(body string, err error) string {
	if body != "" {
		return body
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
