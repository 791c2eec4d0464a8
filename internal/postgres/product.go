// Package postgres implements the catalog and order stores on PostgreSQL
// via pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemart/telemart/internal/domain"
)

// ProductStore implements domain.ProductStore.
type ProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore creates a product store over a pgx pool.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// List returns all products, newest first.
func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, price_cents, image_url, category, stock_quantity, addons, created_at
		FROM products
		ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// Get retrieves a single product by ID.
func (s *ProductStore) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, price_cents, image_url, category, stock_quantity, addons, created_at
		FROM products
		WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	return product, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p         domain.Product
		addonsRaw []byte
	)

	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL,
		&p.Category, &p.StockQuantity, &addonsRaw, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(addonsRaw) > 0 {
		if err := json.Unmarshal(addonsRaw, &p.Addons); err != nil {
			return nil, fmt.Errorf("failed to decode product addons: %w", err)
		}
	}

	return &p, nil
}
