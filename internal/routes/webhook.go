package routes

import (
	"github.com/telemart/telemart/internal/router"
)

// RegisterWebhookRoutes registers provider callback endpoints. These verify
// their own signatures and never sit behind the Telegram auth middleware.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/api/webhook/stripe", deps.StripeHandler.HandleWebhook)
	r.Post("/api/webhook/telegram/{token}", deps.TelegramHandler.HandleWebhook)
}
