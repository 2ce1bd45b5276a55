package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	cart "github.com/chibyk-cyber/pro-shop/internal/cart/domain"
	d "github.com/chibyk-cyber/pro-shop/internal/checkout/domain"
	"github.com/chibyk-cyber/pro-shop/internal/metrics"
	orders "github.com/chibyk-cyber/pro-shop/internal/orders/domain"
	"github.com/chibyk-cyber/pro-shop/internal/orders/repository"
	"github.com/chibyk-cyber/pro-shop/internal/payment"
	"github.com/chibyk-cyber/pro-shop/internal/session"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type PaymentClient interface {
	Initialize(ctx context.Context, req payment.TransactionRequest) (*payment.Initialization, error)
	Verify(ctx context.Context, reference string) (*payment.Verification, error)
}

type OrderStore interface {
	UpsertOrder(ctx context.Context, order *orders.Order) (*repository.UpsertResult, error)
}

type Catalog interface {
	Price(name string) (int64, bool)
}

type CheckoutService struct {
	cart     CartService
	payment  PaymentClient
	orders   OrderStore
	catalog  Catalog
	currency string
	log      *slog.Logger
}

// NewCheckoutService wires the checkout flow. A nil payment client disables
// checkout and verification.
func NewCheckoutService(carts CartService, pay PaymentClient, store OrderStore, catalog Catalog, currency string, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		cart:     carts,
		payment:  pay,
		orders:   store,
		catalog:  catalog,
		currency: currency,
		log:      log.With(slog.String("component", "checkout")),
	}
}

func (s *CheckoutService) Enabled() bool {
	return s.payment != nil
}

// Initiate starts a provider transaction for the session's cart. Nothing is
// stored locally; the order appears only once the reference is verified.
func (s *CheckoutService) Initiate(ctx context.Context, sess *session.Session) (*d.CheckoutResponse, error) {
	if !s.Enabled() {
		return nil, ErrCheckoutDisabled
	}
	if sess == nil || sess.UserID == "" {
		return nil, apperr.Auth(apperr.AuthUnauthenticated, "login required")
	}
	if sess.Email == "" {
		return nil, apperr.Auth(apperr.AuthUnauthenticated, "session has no email to pay with")
	}

	c, err := s.cart.GetCart(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, apperr.Validation("cart", "is empty")
	}

	snapshot, _, err := s.buildCartSnapshot(c.Quantities(), true)
	if err != nil {
		return nil, err
	}
	if snapshot.TotalAmount <= 0 {
		return nil, apperr.Validation("cart", "total must be greater than zero")
	}

	req := payment.TransactionRequest{
		Email:    sess.Email,
		Amount:   snapshot.TotalAmount * 100,
		Currency: s.currency,
		Metadata: payment.Metadata{
			UserID: sess.UserID,
			Cart:   snapshot.Quantities(),
		},
	}

	started, err := s.payment.Initialize(ctx, req)
	if err != nil {
		metrics.TransactionsInitialized.WithLabelValues("error").Inc()
		s.log.WarnContext(ctx, "initialize transaction failed", slog.String("user_id", sess.UserID), slog.String("error", err.Error()))
		return nil, err
	}
	metrics.TransactionsInitialized.WithLabelValues("ok").Inc()

	s.log.InfoContext(ctx, "transaction initialized",
		slog.String("user_id", sess.UserID),
		slog.String("reference", started.Reference),
		slog.Int64("amount", snapshot.TotalAmount))

	return &d.CheckoutResponse{
		AuthorizationURL: started.AuthorizationURL,
		Reference:        started.Reference,
		Amount:           snapshot.TotalAmount,
		Currency:         s.currency,
	}, nil
}

// Verify asks the provider for the state of reference and records it as an
// order of the session's user. Verifying a reference again updates the same
// order; the cart is cleared only by the call that moves the order to success.
func (s *CheckoutService) Verify(ctx context.Context, sess *session.Session, reference string) (*d.VerifyResponse, error) {
	if !s.Enabled() {
		return nil, ErrCheckoutDisabled
	}
	if sess == nil || sess.UserID == "" {
		return nil, apperr.Auth(apperr.AuthUnauthenticated, "login required")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperr.Validation("reference", "is required")
	}

	v, err := s.payment.Verify(ctx, reference)
	if err != nil {
		s.log.WarnContext(ctx, "verify transaction failed", slog.String("reference", reference), slog.String("error", err.Error()))
		return nil, err
	}

	if !chargedTo(v, sess) {
		s.log.WarnContext(ctx, "reference belongs to another user", slog.String("reference", reference), slog.String("user_id", sess.UserID))
		return nil, apperr.Auth(apperr.AuthForbidden, "this transaction belongs to another account")
	}

	quantities, err := s.orderQuantities(ctx, sess.UserID, v)
	if err != nil {
		return nil, err
	}
	snapshot, skipped, err := s.buildCartSnapshot(quantities, false)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		s.log.WarnContext(ctx, "items not in catalog left out of order", slog.String("reference", reference), slog.Any("items", skipped))
	}

	status := orders.MapProviderStatus(v.Status)
	if status == orders.OrderStatusSuccess && v.Amount() != snapshot.TotalAmount {
		metrics.AmountMismatches.Inc()
		s.log.WarnContext(ctx, "paid amount differs from catalog price",
			slog.String("reference", reference),
			slog.Int64("paid", v.Amount()),
			slog.Int64("expected", snapshot.TotalAmount))
	}

	currency := v.Currency
	if currency == "" {
		currency = s.currency
	}
	order := &orders.Order{
		Reference:      reference,
		UserID:         sess.UserID,
		Status:         status,
		ProviderStatus: v.Status,
		Amount:         v.Amount(),
		Currency:       currency,
		Items:          toOrderItems(snapshot),
		PaidAt:         v.PaidAt,
	}

	res, err := s.orders.UpsertOrder(ctx, order)
	if errors.Is(err, repository.ErrReferenceOwnedByOtherUser) {
		return nil, apperr.Auth(apperr.AuthForbidden, "this transaction belongs to another account")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	metrics.TransactionsVerified.WithLabelValues(string(res.Order.Status)).Inc()

	out := &d.VerifyResponse{
		Order:         res.Order,
		Created:       res.Created,
		StatusChanged: res.StatusChanged,
	}
	if res.StatusChanged && res.Order.Status == orders.OrderStatusSuccess {
		if err := s.cart.ClearCart(ctx, sess.UserID); err != nil {
			s.log.ErrorContext(ctx, "clear cart after payment failed", slog.String("user_id", sess.UserID), slog.String("error", err.Error()))
		} else {
			out.CartCleared = true
		}
	}

	s.log.InfoContext(ctx, "transaction verified",
		slog.String("reference", reference),
		slog.String("status", string(res.Order.Status)),
		slog.Bool("created", res.Created),
		slog.Bool("cart_cleared", out.CartCleared))
	return out, nil
}

// orderQuantities prefers the cart the transaction was created with and falls
// back to the user's current cart for transactions started elsewhere.
func (s *CheckoutService) orderQuantities(ctx context.Context, userID string, v *payment.Verification) (map[string]int, error) {
	if v.Metadata != nil && len(v.Metadata.Cart) > 0 {
		return v.Metadata.Cart, nil
	}
	c, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return c.Quantities(), nil
}

func toOrderItems(snapshot *d.CartSnapshot) []orders.OrderItem {
	items := make([]orders.OrderItem, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		items = append(items, orders.OrderItem{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return items
}

// chargedTo reports whether v was paid by the session's user. Transactions
// started here carry the user id in metadata; any other transaction must
// have been charged to the session's email.
func chargedTo(v *payment.Verification, sess *session.Session) bool {
	if v.Metadata != nil && v.Metadata.UserID != "" {
		return v.Metadata.UserID == sess.UserID
	}
	return v.CustomerEmail != "" && strings.EqualFold(v.CustomerEmail, sess.Email)
}
