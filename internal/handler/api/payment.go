package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/telemart/telemart/internal/billing"
	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/handler"
	"github.com/telemart/telemart/internal/middleware"
)

// PaymentHandler creates payment intents for checkout.
type PaymentHandler struct {
	provider billing.Provider
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(provider billing.Provider) *PaymentHandler {
	return &PaymentHandler{provider: provider}
}

type createPaymentIntentRequest struct {
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
}

type createPaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// HandleCreatePaymentIntent handles POST /api/create-payment-intent
func (h *PaymentHandler) HandleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req createPaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("payment.create_intent", "invalid request body"))
		return
	}

	if req.AmountCents <= 0 {
		handler.ErrorResponse(w, r, domain.Invalid("payment.create_intent", "amount must be positive"))
		return
	}

	// The payment intent carries the caller's identity so webhook events and
	// dashboard entries can be traced back to a Telegram user.
	userID := "anonymous"
	userName := "unknown"
	if user := middleware.GetTelegramUser(r.Context()); user != nil {
		userID = strconv.FormatInt(user.ID, 10)
		userName = user.DisplayName()
	}

	pi, err := h.provider.CreatePaymentIntent(r.Context(), billing.CreatePaymentIntentParams{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Metadata: map[string]string{
			"userId":   userID,
			"userName": userName,
		},
	})
	if err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EPAYMENT, "payment.create_intent", "failed to create payment intent"))
		return
	}

	handler.JSON(w, http.StatusOK, createPaymentIntentResponse{ClientSecret: pi.ClientSecret})
}
