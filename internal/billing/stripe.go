package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/telemart/telemart/internal/domain"
)

// StripeProvider implements Provider using Stripe.
type StripeProvider struct {
	config Config
}

// NewStripeProvider creates a new Stripe billing provider. The secret key is
// installed globally in the Stripe SDK.
func NewStripeProvider(config Config) (*StripeProvider, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripe.Key = config.SecretKey
	return &StripeProvider{config: config}, nil
}

// CreatePaymentIntent creates a Stripe payment intent with automatic payment
// methods enabled, which lets the payment sheet pick what the client supports.
func (s *StripeProvider) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	if params.AmountCents <= 0 {
		return nil, domain.Invalid("billing.create_payment_intent", "payment amount must be positive")
	}

	currency := params.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.Context = ctx
	if params.Description != "" {
		piParams.Description = stripe.String(params.Description)
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if err := webhook.ValidatePayload(payload, signature, secret); err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return nil
}
