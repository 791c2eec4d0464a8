package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/telemart/telemart/internal/cart"
	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/handler"
	"github.com/telemart/telemart/internal/middleware"
)

// CartHandler serves the per-user server-side cart.
type CartHandler struct {
	carts    *cart.Manager
	products domain.ProductStore
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *cart.Manager, products domain.ProductStore) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

// CartKey returns the storage key for a user's cart.
func CartKey(userID int64) string {
	return fmt.Sprintf("cart-%d", userID)
}

func (h *CartHandler) storeFor(r *http.Request) (*cart.Store, error) {
	user := middleware.GetTelegramUser(r.Context())
	if user == nil {
		return nil, domain.Unauthorized("cart", "Telegram user identification required")
	}
	return h.carts.For(CartKey(user.ID)), nil
}

// HandleGet handles GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	store, err := h.storeFor(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, store.State())
}

type addItemRequest struct {
	ProductID string            `json:"productId"`
	Quantity  int               `json:"quantity"`
	Addons    map[string]string `json:"addons"`
}

// HandleAddItem handles POST /api/cart/items
func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.storeFor(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "invalid request body"))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "invalid product id"))
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := validateAddons(product, req.Addons); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	state := store.Add(*product, req.Quantity, req.Addons)
	handler.JSON(w, http.StatusOK, state)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateItem handles PUT /api/cart/items/{itemId}
func (h *CartHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.storeFor(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update", "invalid request body"))
		return
	}

	state := store.UpdateQuantity(r.PathValue("itemId"), req.Quantity)
	handler.JSON(w, http.StatusOK, state)
}

// HandleRemoveItem handles DELETE /api/cart/items/{itemId}
func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.storeFor(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	state := store.Remove(r.PathValue("itemId"))
	handler.JSON(w, http.StatusOK, state)
}

// HandleClear handles DELETE /api/cart
func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetTelegramUser(r.Context())
	if user == nil {
		handler.ErrorResponse(w, r, domain.Unauthorized("cart", "Telegram user identification required"))
		return
	}

	state := h.carts.Clear(CartKey(user.ID))
	handler.JSON(w, http.StatusOK, state)
}

// validateAddons checks an addon selection against the product's addon groups.
// Every required group needs a selection, and every selected option must be
// one the group actually offers.
func validateAddons(product *domain.Product, addons map[string]string) error {
	groups := make(map[string]domain.AddonGroup, len(product.Addons))
	for _, g := range product.Addons {
		groups[g.Name] = g
	}

	for name, option := range addons {
		group, ok := groups[name]
		if !ok {
			return domain.Invalid("cart.add", fmt.Sprintf("unknown addon group %q", name))
		}
		if !slices.Contains(group.Options, option) {
			return domain.Invalid("cart.add", fmt.Sprintf("invalid option %q for addon group %q", option, name))
		}
	}

	for _, g := range product.Addons {
		if g.Required {
			if _, ok := addons[g.Name]; !ok {
				return domain.Invalid("cart.add", fmt.Sprintf("addon group %q requires a selection", g.Name))
			}
		}
	}

	return nil
}
