package provider

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76/webhook"
)

func TestMapStripeIntentStatus(t *testing.T) {
	tests := []struct {
		stripeStatus string
		want         string
	}{
		{"succeeded", StatusPaid},
		{"processing", StatusProcessing},
		{"canceled", StatusCancelled},
		{"payment_failed", StatusFailed},
		{"requires_payment_method", StatusPending},
		{"requires_confirmation", StatusPending},
		{"requires_action", StatusPending},
		{"", StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.stripeStatus, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStripeIntentStatus(tt.stripeStatus))
		})
	}
}

func TestStripeVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

	sign := func(body []byte, key string) string {
		ts := time.Now()
		sig := webhook.ComputeSignature(ts, body, key)
		return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
	}

	p := NewStripeProvider(&StripeConfig{WebhookSecret: secret})

	t.Run("accepts valid signature", func(t *testing.T) {
		assert.NoError(t, p.VerifyWebhookSignature(payload, sign(payload, secret)))
	})

	t.Run("rejects signature from wrong secret", func(t *testing.T) {
		assert.Error(t, p.VerifyWebhookSignature(payload, sign(payload, "whsec_other")))
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		header := sign(payload, secret)
		assert.Error(t, p.VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), header))
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		assert.Error(t, p.VerifyWebhookSignature(payload, "not-a-header"))
	})

	t.Run("accepts anything with no secret configured", func(t *testing.T) {
		open := NewStripeProvider(&StripeConfig{})
		assert.NoError(t, open.VerifyWebhookSignature(payload, ""))
	})
}
