package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order-related domain errors.
var (
	ErrOrderNotFound           = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrPaymentAlreadyProcessed = &Error{Code: ECONFLICT, Message: "Payment intent already processed"}
	ErrEmptyOrder              = &Error{Code: EINVALID, Message: "Order must contain at least one product"}
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusShipped  OrderStatus = "shipped"
)

// Address is a shipping address as submitted at checkout.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order is a completed checkout: the cart line items at submission time plus
// payment and shipping details.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	UserID           int64       `json:"user_id"`
	Products         []CartItem  `json:"products"`
	TotalAmountCents int64       `json:"total_amount"`
	PaymentIntentID  string      `json:"payment_intent_id"`
	ShippingAddress  Address     `json:"shipping_address"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}

// CreateOrderParams carries the order payload handed over at checkout.
type CreateOrderParams struct {
	UserID           int64
	Products         []CartItem
	TotalAmountCents int64
	PaymentIntentID  string
	ShippingAddress  Address
	Status           OrderStatus
}

// OrderStore provides persistence for orders.
type OrderStore interface {
	// Create inserts a new order and returns the stored row.
	// Returns ErrPaymentAlreadyProcessed when an order for the same payment
	// intent already exists.
	Create(ctx context.Context, params CreateOrderParams) (*Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)

	// UpdateStatusByPaymentIntent transitions the order matching a payment
	// intent to the given status. Returns ErrOrderNotFound when no order
	// references the payment intent.
	UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status OrderStatus) (*Order, error)
}
