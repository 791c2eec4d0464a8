package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/telemart/telemart/internal/cart"
	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/handler"
	"github.com/telemart/telemart/internal/middleware"
)

// OrderHandler serves order creation and history.
type OrderHandler struct {
	orders   domain.OrderStore
	carts    *cart.Manager
	validate *validator.Validate
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders domain.OrderStore, carts *cart.Manager) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		carts:    carts,
		validate: validator.New(),
	}
}

type createOrderRequest struct {
	UserID           int64             `json:"userId" validate:"required"`
	Products         []domain.CartItem `json:"products" validate:"required,min=1"`
	TotalAmountCents int64             `json:"totalAmount" validate:"required,gt=0"`
	PaymentIntentID  string            `json:"paymentIntentId" validate:"required"`
	ShippingAddress  domain.Address    `json:"shippingAddress"`
}

// HandleCreate handles POST /api/orders
//
// The order is recorded as pending; the payment webhook flips it to paid once
// the payment intent succeeds. The caller's cart is cleared on success.
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetTelegramUser(r.Context())
	if user == nil {
		handler.ErrorResponse(w, r, domain.Unauthorized("order.create", "Telegram user identification required"))
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("order.create", "invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("order.create", "missing or invalid order fields"))
		return
	}

	// Orders can only be placed for the authenticated user.
	if req.UserID != user.ID {
		handler.ErrorResponse(w, r, domain.Forbidden("order.create", "order user does not match authenticated user"))
		return
	}

	// The total is derived from the line items, never trusted from the client.
	var total int64
	for _, item := range req.Products {
		if item.Quantity <= 0 {
			handler.ErrorResponse(w, r, domain.Invalid("order.create", "item quantity must be positive"))
			return
		}
		total += item.LineSubtotal()
	}
	if total != req.TotalAmountCents {
		handler.ErrorResponse(w, r, domain.Invalid("order.create", "order total does not match line items"))
		return
	}

	order, err := h.orders.Create(r.Context(), domain.CreateOrderParams{
		UserID:           user.ID,
		Products:         req.Products,
		TotalAmountCents: total,
		PaymentIntentID:  req.PaymentIntentID,
		ShippingAddress:  req.ShippingAddress,
		Status:           domain.OrderStatusPending,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.carts.Clear(CartKey(user.ID))

	handler.JSON(w, http.StatusCreated, order)
}

// HandleListByUser handles GET /api/orders/user/{userId}
func (h *OrderHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetTelegramUser(r.Context())
	if user == nil {
		handler.ErrorResponse(w, r, domain.Unauthorized("order.list", "Telegram user identification required"))
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("order.list", "invalid user id"))
		return
	}

	if userID != user.ID {
		handler.ErrorResponse(w, r, domain.Forbidden("order.list", "cannot read another user's orders"))
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "order.list", "failed to load orders"))
		return
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	handler.JSON(w, http.StatusOK, orders)
}
