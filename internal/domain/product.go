package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// ProductStore provides read access to the product catalog.
type ProductStore interface {
	// List returns all products in the catalog.
	List(ctx context.Context) ([]Product, error)

	// Get retrieves a single product by ID.
	// Returns ErrProductNotFound when no product matches.
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
}

// AddonGroup is a named customization group for a product (e.g., "Spicy level")
// with a closed set of selectable option strings. Required marks groups the
// customer must pick an option from before the product can be added to a cart.
type AddonGroup struct {
	Name     string   `json:"name"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

// Product is one catalog entry. Prices are integer cents to keep cart
// arithmetic exact.
type Product struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	PriceCents    int64        `json:"price"`
	ImageURL      string       `json:"image_url"`
	Category      string       `json:"category,omitempty"`
	StockQuantity int32        `json:"stock_quantity"`
	Addons        []AddonGroup `json:"addons,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
