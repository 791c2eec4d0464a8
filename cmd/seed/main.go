package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telemart/telemart/internal"
	"github.com/telemart/telemart/internal/domain"
)

type seedProduct struct {
	Name          string
	Description   string
	PriceCents    int64
	ImageURL      string
	Category      string
	StockQuantity int32
	Addons        []domain.AddonGroup
}

var catalog = []seedProduct{
	{
		Name:          "Smartphone X",
		Description:   "Latest smartphone with advanced features",
		PriceCents:    69999,
		ImageURL:      "https://via.placeholder.com/300?text=Smartphone+X",
		Category:      "Electronics",
		StockQuantity: 50,
	},
	{
		Name:          "Wireless Earbuds",
		Description:   "High-quality wireless earbuds with noise cancellation",
		PriceCents:    12999,
		ImageURL:      "https://via.placeholder.com/300?text=Wireless+Earbuds",
		Category:      "Electronics",
		StockQuantity: 100,
	},
	{
		Name:          "Smart Watch",
		Description:   "Fitness tracker and smartwatch with heart rate monitor",
		PriceCents:    19999,
		ImageURL:      "https://via.placeholder.com/300?text=Smart+Watch",
		Category:      "Electronics",
		StockQuantity: 30,
	},
	{
		Name:          "Laptop Pro",
		Description:   "Powerful laptop for professionals",
		PriceCents:    129999,
		ImageURL:      "https://via.placeholder.com/300?text=Laptop+Pro",
		Category:      "Electronics",
		StockQuantity: 20,
	},
	{
		Name:          "Coffee Maker",
		Description:   "Automatic coffee maker with timer",
		PriceCents:    8999,
		ImageURL:      "https://via.placeholder.com/300?text=Coffee+Maker",
		Category:      "Home",
		StockQuantity: 40,
	},
	{
		Name:          "Desk Lamp",
		Description:   "Adjustable LED desk lamp",
		PriceCents:    4999,
		ImageURL:      "https://via.placeholder.com/300?text=Desk+Lamp",
		Category:      "Home",
		StockQuantity: 60,
	},
	{
		Name:          "Backpack",
		Description:   "Durable backpack with laptop compartment",
		PriceCents:    5999,
		ImageURL:      "https://via.placeholder.com/300?text=Backpack",
		Category:      "Accessories",
		StockQuantity: 75,
	},
	{
		Name:          "Water Bottle",
		Description:   "Insulated stainless steel water bottle",
		PriceCents:    2499,
		ImageURL:      "https://via.placeholder.com/300?text=Water+Bottle",
		Category:      "Accessories",
		StockQuantity: 100,
	},
	{
		Name:          "Bluetooth Speaker",
		Description:   "Portable Bluetooth speaker with 20-hour battery life",
		PriceCents:    7999,
		ImageURL:      "https://via.placeholder.com/300?text=Bluetooth+Speaker",
		Category:      "Electronics",
		StockQuantity: 45,
	},
	{
		Name:          "Yoga Mat",
		Description:   "Non-slip yoga mat with carrying strap",
		PriceCents:    2999,
		ImageURL:      "https://via.placeholder.com/300?text=Yoga+Mat",
		Category:      "Fitness",
		StockQuantity: 50,
	},
	{
		Name:          "Chili Basil Paste",
		Description:   "Small-batch chili paste with fresh basil",
		PriceCents:    1299,
		ImageURL:      "https://via.placeholder.com/300?text=Chili+Basil+Paste",
		Category:      "Food",
		StockQuantity: 80,
		Addons: []domain.AddonGroup{
			{Name: "Spicy level", Options: []string{"Mild", "Medium", "Hot"}, Required: true},
			{Name: "Basil", Options: []string{"None", "Extra"}},
			{Name: "Weight", Options: []string{"100g", "250g", "500g"}, Required: true},
			{Name: "Packaging", Options: []string{"Jar", "Pouch"}},
		},
	},
	{
		Name:          "Herbal Tea Sampler",
		Description:   "Assorted loose-leaf herbal teas",
		PriceCents:    1899,
		ImageURL:      "https://via.placeholder.com/300?text=Herbal+Tea+Sampler",
		Category:      "Food",
		StockQuantity: 60,
		Addons: []domain.AddonGroup{
			{Name: "Weight", Options: []string{"50g", "150g"}, Required: true},
			{Name: "Packaging", Options: []string{"Tin", "Pouch"}},
		},
	},
}

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Don't reseed a populated catalog.
	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing products: %w", err)
	}
	if count > 0 {
		logger.Info("Products already exist. Skipping seed.", "count", count)
		return nil
	}

	logger.Info("Seeding products...")
	for _, p := range catalog {
		addons := p.Addons
		if addons == nil {
			addons = []domain.AddonGroup{}
		}
		addonsJSON, err := json.Marshal(addons)
		if err != nil {
			return fmt.Errorf("failed to encode addons for %q: %w", p.Name, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO products (name, description, price_cents, image_url, category, stock_quantity, addons)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category, p.StockQuantity, addonsJSON)
		if err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.Name, err)
		}
	}

	logger.Info("Seed completed", "products", len(catalog))
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
