package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemart/telemart/internal/domain"
)

// OrderStore implements domain.OrderStore.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates an order store over a pgx pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Create inserts a new order. The payment intent ID is unique, which makes
// order creation idempotent per payment.
func (s *OrderStore) Create(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	if len(params.Products) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	productsJSON, err := json.Marshal(params.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order products: %w", err)
	}
	addressJSON, err := json.Marshal(params.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shipping address: %w", err)
	}

	status := params.Status
	if status == "" {
		status = domain.OrderStatusPaid
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, products, total_amount_cents, payment_intent_id, shipping_address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, products, total_amount_cents, payment_intent_id, shipping_address, status, created_at`,
		params.UserID, productsJSON, params.TotalAmountCents, params.PaymentIntentID, addressJSON, status)

	order, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrPaymentAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return order, nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, products, total_amount_cents, payment_intent_id, shipping_address, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	return orders, nil
}

// UpdateStatusByPaymentIntent transitions the order referencing a payment
// intent to the given status.
func (s *OrderStore) UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status domain.OrderStatus) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders
		SET status = $2
		WHERE payment_intent_id = $1
		RETURNING id, user_id, products, total_amount_cents, payment_intent_id, shipping_address, status, created_at`,
		paymentIntentID, status)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o           domain.Order
		productsRaw []byte
		addressRaw  []byte
	)

	err := row.Scan(&o.ID, &o.UserID, &productsRaw, &o.TotalAmountCents,
		&o.PaymentIntentID, &addressRaw, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(productsRaw, &o.Products); err != nil {
		return nil, fmt.Errorf("failed to decode order products: %w", err)
	}
	if len(addressRaw) > 0 {
		if err := json.Unmarshal(addressRaw, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}

	return &o, nil
}
