package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/telemart/telemart/internal/cart"
	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/middleware"
)

var testUser = &domain.TelegramUser{ID: 42, FirstName: "Ada", Username: "ada_l"}

// withUser attaches a Telegram user to the request the way the auth
// middleware does.
func withUser(r *http.Request, user *domain.TelegramUser) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.TelegramUserContextKey, user)
	return r.WithContext(ctx)
}

func testCartManager() *cart.Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cart.NewManager(cart.NewMemoryStorage(), logger)
}

// productStoreStub serves a fixed catalog.
type productStoreStub struct {
	products map[uuid.UUID]domain.Product
	listErr  error
}

func (s *productStoreStub) List(ctx context.Context) ([]domain.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *productStoreStub) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

// orderStoreStub records created orders and replays canned results.
type orderStoreStub struct {
	createFn func(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error)
	created  []domain.CreateOrderParams
	orders   []domain.Order
}

func (s *orderStoreStub) Create(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	s.created = append(s.created, params)
	if s.createFn != nil {
		return s.createFn(ctx, params)
	}
	return &domain.Order{
		ID:               uuid.New(),
		UserID:           params.UserID,
		Products:         params.Products,
		TotalAmountCents: params.TotalAmountCents,
		PaymentIntentID:  params.PaymentIntentID,
		ShippingAddress:  params.ShippingAddress,
		Status:           params.Status,
	}, nil
}

func (s *orderStoreStub) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *orderStoreStub) UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status domain.OrderStatus) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func testProduct(t *testing.T) domain.Product {
	t.Helper()
	return domain.Product{
		ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Name:        "Chili Basil Paste",
		Description: "Small-batch chili paste",
		PriceCents:  1299,
		ImageURL:    "https://example.com/paste.jpg",
		Category:    "Food",
		Addons: []domain.AddonGroup{
			{Name: "Spicy level", Options: []string{"Mild", "Medium", "Hot"}, Required: true},
			{Name: "Basil", Options: []string{"None", "Extra"}},
		},
	}
}
