package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chibyk-cyber/pro-shop/internal/orders/domain"
	"github.com/chibyk-cyber/pro-shop/internal/orders/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type OrderReader interface {
	GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	SalesSummary(ctx context.Context) ([]domain.SalesTotal, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(orders OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type OrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

type SalesResponse struct {
	Totals []domain.SalesTotal `json:"totals"`
}

// List handles GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrdersByUserID(ctx, sess.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders})
}

// Get handles GET /api/v1/orders/{reference}. Orders of other users are
// reported as missing.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	reference := chi.URLParam(r, "reference")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.GetOrderByReference(ctx, reference)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if order.UserID != sess.UserID {
		handleError(w, r, repository.ErrOrderNotFound)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListAll handles GET /api/v1/admin/orders?limit=&offset=
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultPageSize)
	if !ok || limit <= 0 || limit > maxPageSize {
		respondError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 200")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok || offset < 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "offset must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListAllOrders(ctx, limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders})
}

// Sales handles GET /api/v1/admin/sales
func (h *OrdersHandler) Sales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	totals, err := h.orders.SalesSummary(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if totals == nil {
		totals = []domain.SalesTotal{}
	}
	respondJSON(w, http.StatusOK, SalesResponse{Totals: totals})
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
