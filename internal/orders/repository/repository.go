package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chibyk-cyber/pro-shop/internal/orders/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrReferenceOwnedByOtherUser is returned when a reference already
	// belongs to an order of a different user.
	ErrReferenceOwnedByOtherUser = errors.New("reference belongs to another user")
)

const MigrationsTable = "orders_schema_migrations"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// UpsertResult describes what an UpsertOrder call did.
type UpsertResult struct {
	Order         *domain.Order
	Created       bool
	StatusChanged bool
}

type OrderRepository interface {
	UpsertOrder(ctx context.Context, order *domain.Order) (*UpsertResult, error)
	GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	SalesSummary(ctx context.Context) ([]domain.SalesTotal, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
