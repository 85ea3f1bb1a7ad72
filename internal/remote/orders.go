package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/geocode"
	"github.com/example/storefront/internal/realtime"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrTotalMismatch     = errors.New("order total does not match line items")
)

// OrderStore owns the orders and order_items tables. Every committed write
// bumps the row version and publishes the full snapshot to the push channel.
type OrderStore struct {
	db        *sql.DB
	publisher realtime.Publisher
}

func NewOrderStore(db *sql.DB, publisher realtime.Publisher) *OrderStore {
	return &OrderStore{db: db, publisher: publisher}
}

// Create inserts the order header and all line items in one transaction, so a
// line-item failure can never strand a header row. The total invariant is
// checked here, at creation time only.
func (s *OrderStore) Create(ctx context.Context, o *order.Order) error {
	if o.Total != o.ItemTotal() {
		return ErrTotalMismatch
	}

	now := time.Now()
	o.ID = uuid.New().String()
	o.Status = order.StatusPending
	o.Version = 1
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	var lat, lng sql.NullFloat64
	if o.DeliveryLocation != nil {
		lat = sql.NullFloat64{Float64: o.DeliveryLocation.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: o.DeliveryLocation.Lng, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total, status, payment_method, payment_status, address, delivery_lat, delivery_lng, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.UserID, o.Total, o.Status, o.PaymentMethod, o.PaymentStatus, o.Address, lat, lng, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`,
			o.ID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	s.publish(ctx, *o)
	return nil
}

// Get returns the order with its line items.
func (s *OrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, total, status, payment_method, payment_status, payment_id, address, delivery_lat, delivery_lng, version, created_at, updated_at
		 FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := s.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListByUser returns a user's orders, newest first, with line items.
func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, total, status, payment_method, payment_status, payment_id, address, delivery_lat, delivery_lng, version, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items, err := s.loadItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus advances an order along the status ladder. Invalid transitions
// are rejected here, on the writer side; observers only display.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, target order.Status) (*order.Order, error) {
	return s.update(ctx, id, func(current *order.Order) error {
		if !order.CanTransition(current.Status, target) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, target)
		}
		current.Status = target
		return nil
	})
}

// UpdatePayment records a gateway outcome. When target is non-empty the order
// status moves with it (success advances to processing, failure cancels).
func (s *OrderStore) UpdatePayment(ctx context.Context, id string, paymentStatus order.PaymentStatus, paymentID string, target order.Status) (*order.Order, error) {
	return s.update(ctx, id, func(current *order.Order) error {
		current.PaymentStatus = paymentStatus
		if paymentID != "" {
			current.PaymentID = paymentID
		}
		if target != "" {
			if !order.CanTransition(current.Status, target) {
				return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, target)
			}
			current.Status = target
		}
		return nil
	})
}

// update applies mutate under a row lock, bumps the version, and publishes the
// new snapshot after commit.
func (s *OrderStore) update(ctx context.Context, id string, mutate func(*order.Order) error) (*order.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, total, status, payment_method, payment_status, payment_id, address, delivery_lat, delivery_lng, version, created_at, updated_at
		 FROM orders WHERE id = $1 FOR UPDATE`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := mutate(o); err != nil {
		return nil, err
	}

	o.Version++
	o.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, payment_status = $3, payment_id = $4, version = $5, updated_at = $6 WHERE id = $1`,
		o.ID, o.Status, o.PaymentStatus, o.PaymentID, o.Version, o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	items, err := s.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	s.publish(ctx, *o)
	return o, nil
}

// ListActive returns orders still moving along the ladder, oldest first. The
// fulfillment worker drives these forward.
func (s *OrderStore) ListActive(ctx context.Context) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, total, status, payment_method, payment_status, payment_id, address, delivery_lat, delivery_lng, version, created_at, updated_at
		 FROM orders WHERE status IN ($1, $2) ORDER BY updated_at ASC`,
		order.StatusProcessing, order.StatusOutForDelivery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *OrderStore) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, quantity, price FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// publish pushes the committed snapshot. The row is already durable at this
// point, so a push failure is logged rather than unwinding the write; the
// tracker's initial fetch covers any missed push.
func (s *OrderStore) publish(ctx context.Context, o order.Order) {
	if s.publisher == nil {
		return
	}
	change := realtime.OrderChange{Order: o, OccurredAt: o.UpdatedAt}
	if err := s.publisher.PublishOrderChange(ctx, change); err != nil {
		log.Printf("[OrderStore] Failed to publish change for order %s v%d: %v", o.ID, o.Version, err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var lat, lng sql.NullFloat64
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.PaymentID,
		&o.Address, &lat, &lng, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		o.DeliveryLocation = &geocode.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &o, nil
}
