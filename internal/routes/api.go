package routes

import (
	"github.com/telemart/telemart/internal/handler/api"
	"github.com/telemart/telemart/internal/router"
)

// RegisterAPIRoutes registers the Mini App API.
//
// The catalog is readable without init data so the storefront can render
// before Telegram identity is attached. Everything tied to a user sits
// behind the Telegram auth middleware.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Public catalog
	r.Get("/api/products", deps.ProductHandler.HandleList)
	r.Get("/api/products/{id}", deps.ProductHandler.HandleGet)

	// Init data validation endpoint: the middleware does the actual check.
	authed := r.Group(deps.TelegramAuth)
	authed.Post("/api/validate-telegram-data", api.HandleValidateTelegramData)

	// Payments accept anonymous but verified callers.
	authed.Post("/api/create-payment-intent", deps.PaymentHandler.HandleCreatePaymentIntent)

	// Carts and orders require an identified user.
	user := authed.Group(deps.RequireUser)
	user.Get("/api/cart", deps.CartHandler.HandleGet)
	user.Post("/api/cart/items", deps.CartHandler.HandleAddItem)
	user.Put("/api/cart/items/{itemId}", deps.CartHandler.HandleUpdateItem)
	user.Delete("/api/cart/items/{itemId}", deps.CartHandler.HandleRemoveItem)
	user.Delete("/api/cart", deps.CartHandler.HandleClear)

	user.Post("/api/orders", deps.OrderHandler.HandleCreate)
	user.Get("/api/orders/user/{userId}", deps.OrderHandler.HandleListByUser)
}
