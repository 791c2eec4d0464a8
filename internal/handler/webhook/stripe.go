package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v82"

	"github.com/telemart/telemart/internal/billing"
	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/handler"
)

// StripeHandler handles Stripe webhook events for storefront payments.
type StripeHandler struct {
	provider      billing.Provider
	orders        domain.OrderStore
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeHandler creates a new Stripe webhook handler.
func NewStripeHandler(provider billing.Provider, orders domain.OrderStore, webhookSecret string, logger *slog.Logger) *StripeHandler {
	return &StripeHandler{
		provider:      provider,
		orders:        orders,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// HandleWebhook handles POST /api/webhook/stripe
//
// Payment intent events drive order status: succeeded marks the order paid,
// payment_failed marks it failed, canceled marks it canceled. Events for
// unknown payment intents are acknowledged so Stripe stops retrying them.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "missing signature"))
		return
	}

	if err := h.provider.VerifyWebhookSignature(payload, signature, h.webhookSecret); err != nil {
		h.logger.Warn("stripe webhook signature verification failed", "error", err)
		handler.ErrorResponse(w, r, domain.Unauthorized("webhook.stripe", "invalid signature"))
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "invalid event JSON"))
		return
	}

	h.logger.Info("stripe webhook event received", "type", event.Type, "id", event.ID)

	var status domain.OrderStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = domain.OrderStatusPaid
	case "payment_intent.payment_failed":
		status = domain.OrderStatusFailed
	case "payment_intent.canceled":
		status = domain.OrderStatusCanceled
	default:
		// Unhandled event types are acknowledged without action.
		handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "invalid payment intent payload"))
		return
	}

	order, err := h.orders.UpdateStatusByPaymentIntent(r.Context(), intent.ID, status)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			// The order may not have been submitted yet. Acknowledge so the
			// event is not retried forever; reconciliation is manual.
			h.logger.Warn("stripe webhook for unknown payment intent",
				"payment_intent", intent.ID,
				"event_type", event.Type,
			)
			handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
		handler.ErrorResponse(w, r, domain.Internal(err, "webhook.stripe", "failed to update order"))
		return
	}

	h.logger.Info("order status updated from stripe webhook",
		"order_id", order.ID,
		"payment_intent", intent.ID,
		"status", order.Status,
	)
	handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
