package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_IsTestMode(t *testing.T) {
	assert.True(t, Config{SecretKey: "sk_test_abc123"}.IsTestMode())
	assert.False(t, Config{SecretKey: "sk_live_abc123"}.IsTestMode())
	assert.False(t, Config{}.IsTestMode())
}

func TestMockProvider_Defaults(t *testing.T) {
	m := NewMockProvider()

	pi, err := m.CreatePaymentIntent(context.Background(), CreatePaymentIntentParams{
		AmountCents: 2598,
		Currency:    "usd",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pi.ID)
	assert.NotEmpty(t, pi.ClientSecret)
	assert.Equal(t, int64(2598), pi.AmountCents)
	assert.Contains(t, m.PaymentIntents, pi.ID)
	assert.Contains(t, m.CallLog[0], "CreatePaymentIntent")

	require.NoError(t, m.VerifyWebhookSignature(nil, "sig", "secret"))
}

func TestNewStripeProvider_RequiresKey(t *testing.T) {
	_, err := NewStripeProvider(Config{})
	assert.Error(t, err)
}
