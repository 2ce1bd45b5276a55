package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFailed  OrderStatus = "failed"
)

// IsTerminal reports whether no later verification may change the order.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSuccess || s == OrderStatusFailed
}

// MapProviderStatus folds the provider's transaction status into ours.
// Anything not known to be final stays pending.
func MapProviderStatus(s string) OrderStatus {
	switch s {
	case "success":
		return OrderStatusSuccess
	case "failed", "abandoned", "reversed":
		return OrderStatusFailed
	default:
		return OrderStatusPending
	}
}

type Order struct {
	ID             uuid.UUID   `json:"id"`
	Reference      string      `json:"reference"`
	UserID         string      `json:"user_id"`
	Status         OrderStatus `json:"status"`
	ProviderStatus string      `json:"provider_status"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	Items          []OrderItem `json:"items"`
	PaidAt         *time.Time  `json:"paid_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type OrderItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// SalesTotal aggregates the orders in one status.
type SalesTotal struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
	Amount int64       `json:"amount"`
}
