package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/handler"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	products domain.ProductStore
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products domain.ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

// HandleList handles GET /api/products
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "product.list", "failed to load products"))
		return
	}

	if products == nil {
		products = []domain.Product{}
	}
	handler.JSON(w, http.StatusOK, products)
}

// HandleGet handles GET /api/products/{id}
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("product.get", "invalid product id"))
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, product)
}
