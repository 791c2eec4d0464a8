package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates successful payment flows without calling the Stripe API.
type MockProvider struct {
	// CreatePaymentIntentFunc allows customizing payment intent creation behavior
	CreatePaymentIntentFunc func(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// PaymentIntents stores created payment intents for test assertions
	PaymentIntents map[string]*PaymentIntent

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		PaymentIntents: make(map[string]*PaymentIntent),
		CallLog:        []string{},
	}
}

// CreatePaymentIntent creates a mock payment intent.
func (m *MockProvider) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreatePaymentIntent(%d, %s)", params.AmountCents, params.Currency))

	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, params)
	}

	id := "pi_" + uuid.New().String()
	pi := &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.New().String(),
		AmountCents:  params.AmountCents,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
	}
	m.PaymentIntents[pi.ID] = pi
	return pi, nil
}

// VerifyWebhookSignature verifies a mock webhook signature.
// Default behavior accepts any payload.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}
	return nil
}
