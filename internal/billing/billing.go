package billing

import (
	"context"
	"strings"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreatePaymentIntent creates a payment intent for one-time charges.
	// Returns payment intent with client_secret for frontend confirmation.
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	// Required to process async payment confirmations.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreatePaymentIntentParams contains parameters for creating a payment intent.
type CreatePaymentIntentParams struct {
	// AmountCents is the amount in smallest currency unit (cents for USD)
	AmountCents int64

	// Currency code (ISO 4217) - e.g., "usd", "eur"
	Currency string

	// Description appears on customer's statement and in the provider dashboard
	Description string

	// Metadata is attached to the payment intent for reconciliation
	Metadata map[string]string
}

// PaymentIntent represents a payment that may be confirmed asynchronously.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// Config holds billing provider credentials.
type Config struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

// IsTestMode reports whether the configured key targets the provider's
// test environment.
func (c Config) IsTestMode() bool {
	return strings.HasPrefix(c.SecretKey, "sk_test_")
}
