package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chibyk-cyber/pro-shop/internal/orders/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const orderColumns = `id, reference, user_id, status, provider_status, amount, currency, items, paid_at, created_at, updated_at`

// UpsertOrder records order under its reference. The first call for a
// reference inserts; later calls update a pending order and leave a terminal
// one untouched. An outbox event is written in the same transaction whenever
// the order is created or its status changes.
func (r *Repository) UpsertOrder(ctx context.Context, order *domain.Order) (*UpsertResult, error) {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	// ON CONFLICT DO NOTHING lets concurrent verifies of one reference race
	// safely; the loser falls through to the locked read below.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, reference, user_id, status, provider_status, amount, currency, items, paid_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 ON CONFLICT (reference) DO NOTHING`,
		order.ID, order.Reference, order.UserID, order.Status, order.ProviderStatus,
		order.Amount, order.Currency, itemsJSON, order.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	result := &UpsertResult{}
	if inserted == 1 {
		result.Created = true
		result.StatusChanged = true
	} else {
		existing, err := scanOrder(tx.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE reference = $1 FOR UPDATE`, order.Reference))
		if err != nil {
			return nil, fmt.Errorf("lock order %s: %w", order.Reference, err)
		}
		if existing.UserID != order.UserID {
			return nil, ErrReferenceOwnedByOtherUser
		}
		if existing.Status.IsTerminal() {
			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("commit: %w", err)
			}
			result.Order = existing
			return result, nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $2, provider_status = $3, amount = $4, currency = $5, items = $6, paid_at = $7, updated_at = NOW()
			 WHERE reference = $1`,
			order.Reference, order.Status, order.ProviderStatus, order.Amount, order.Currency, itemsJSON, order.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
		result.StatusChanged = existing.Status != order.Status
	}

	saved, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE reference = $1`, order.Reference))
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	result.Order = saved

	if result.StatusChanged {
		eventType := EventOrderStatusChanged
		if result.Created {
			eventType = EventOrderCreated
		}
		payload, err := json.Marshal(saved)
		if err != nil {
			return nil, fmt.Errorf("marshal outbox payload: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outbox (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
			saved.Reference, eventType, payload)
		if err != nil {
			return nil, fmt.Errorf("insert outbox event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func (r *Repository) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE reference = $1`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by reference: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	return collectOrders(rows)
}

func (r *Repository) ListAllOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query all orders: %w", err)
	}
	return collectOrders(rows)
}

func (r *Repository) SalesSummary(ctx context.Context) ([]domain.SalesTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("query sales summary: %w", err)
	}
	defer rows.Close()

	var totals []domain.SalesTotal
	for rows.Next() {
		var t domain.SalesTotal
		if err := rows.Scan(&t.Status, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return totals, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox WHERE processed_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET processed_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		itemsJSON []byte
		paidAt    sql.NullTime
	)
	err := s.Scan(&o.ID, &o.Reference, &o.UserID, &o.Status, &o.ProviderStatus,
		&o.Amount, &o.Currency, &itemsJSON, &paidAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		o.PaidAt = &t
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}
