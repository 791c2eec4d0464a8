package routes

import (
	"github.com/telemart/telemart/internal/handler/api"
	"github.com/telemart/telemart/internal/handler/webhook"
	"github.com/telemart/telemart/internal/router"
)

// APIDeps contains the handlers behind the Mini App API.
type APIDeps struct {
	ProductHandler *api.ProductHandler
	CartHandler    *api.CartHandler
	OrderHandler   *api.OrderHandler
	PaymentHandler *api.PaymentHandler

	// TelegramAuth validates Mini App init data and attaches the caller's
	// Telegram user to the request context.
	TelegramAuth router.Middleware

	// RequireUser rejects requests whose init data carries no user record.
	RequireUser router.Middleware
}

// WebhookDeps contains the handlers for provider callbacks.
type WebhookDeps struct {
	StripeHandler   *webhook.StripeHandler
	TelegramHandler *webhook.TelegramHandler
}
