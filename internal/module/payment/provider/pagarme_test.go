package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPagarme(t *testing.T, handler http.HandlerFunc) (*PagarmeProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewPagarmeProvider(&PagarmeConfig{
		APIKey:  "sk_test_key",
		BaseURL: server.URL,
	}, server.Client())
	return p, server
}

func pixRequest() *ChargeRequest {
	return &ChargeRequest{
		ReferenceID: "tx-1",
		Amount:      10000,
		Method:      "pix",
		Customer: Customer{
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Document: "12345678901",
			Phone:    "+5511999998888",
		},
		Description: "Order #42",
	}
}

func TestPagarmeCreateCharge(t *testing.T) {
	t.Run("posts order and normalizes pix result", func(t *testing.T) {
		var captured pagarmeOrderRequest
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)

			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "sk_test_key", user)
			assert.Empty(t, pass)

			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "or_abc123",
				"code": "tx-1",
				"status": "pending",
				"charges": [{
					"id": "ch_1",
					"status": "pending",
					"last_transaction": {
						"qr_code": "00020126qr",
						"qr_code_url": "https://api.pagar.me/qr/1",
						"expires_at": "2026-09-01T12:00:00Z"
					}
				}]
			}`))
		})

		result, err := p.CreateCharge(context.Background(), pixRequest())
		require.NoError(t, err)

		assert.Equal(t, "or_abc123", result.ExternalID)
		assert.Equal(t, StatusPending, result.Status)
		require.NotNil(t, result.Pix)
		assert.Equal(t, "00020126qr", result.Pix.QRCode)
		assert.Equal(t, "https://api.pagar.me/qr/1", result.Pix.QRCodeURL)
		require.NotNil(t, result.Pix.ExpiresAt)

		assert.Equal(t, "tx-1", captured.Code)
		assert.Equal(t, "individual", captured.Customer.Type)
		require.Len(t, captured.Items, 1)
		assert.Equal(t, int64(10000), captured.Items[0].Amount)
		require.Len(t, captured.Payments, 1)
		assert.Equal(t, "pix", captured.Payments[0].PaymentMethod)
		require.NotNil(t, captured.Payments[0].Pix)
		assert.Equal(t, int64(3600), captured.Payments[0].Pix.ExpiresIn)
	})

	t.Run("synchronously paid charge maps to paid", func(t *testing.T) {
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"or_1","status":"paid","charges":[{"id":"ch_1","status":"paid"}]}`))
		})

		req := pixRequest()
		req.Method = "credit_card"
		req.Card = &Card{Number: "4111111111111111", HolderName: "MARIA", ExpMonth: 12, ExpYear: 2030, CVV: "123"}

		result, err := p.CreateCharge(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, result.Status)
	})

	t.Run("company document sets customer type", func(t *testing.T) {
		var captured pagarmeOrderRequest
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			w.Write([]byte(`{"id":"or_1","status":"pending","charges":[{"id":"ch_1","status":"pending"}]}`))
		})

		req := pixRequest()
		req.Customer.Document = "12345678000199"

		_, err := p.CreateCharge(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "company", captured.Customer.Type)
	})

	t.Run("boleto payment carries a due date", func(t *testing.T) {
		var captured pagarmeOrderRequest
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			w.Write([]byte(`{
				"id": "or_1",
				"status": "pending",
				"charges": [{
					"id": "ch_1",
					"status": "pending",
					"last_transaction": {"line": "23793.38128", "pdf": "https://api.pagar.me/boleto/1.pdf"}
				}]
			}`))
		})

		req := pixRequest()
		req.Method = "boleto"

		result, err := p.CreateCharge(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, captured.Payments, 1)
		require.NotNil(t, captured.Payments[0].Boleto)
		_, err = time.Parse(time.RFC3339, captured.Payments[0].Boleto.DueAt)
		assert.NoError(t, err)

		require.NotNil(t, result.Boleto)
		assert.Equal(t, "23793.38128", result.Boleto.Line)
	})

	t.Run("credit card without card data fails before the wire", func(t *testing.T) {
		called := false
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		req := pixRequest()
		req.Method = "credit_card"
		req.Card = nil

		_, err := p.CreateCharge(context.Background(), req)
		require.Error(t, err)
		assert.False(t, called)
	})

	t.Run("api error message is surfaced", func(t *testing.T) {
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"The request is invalid."}`))
		})

		_, err := p.CreateCharge(context.Background(), pixRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "The request is invalid.")
	})

	t.Run("order without charges is an error", func(t *testing.T) {
		p, _ := newTestPagarme(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"or_1","status":"pending","charges":[]}`))
		})

		_, err := p.CreateCharge(context.Background(), pixRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no charges")
	})
}

func TestPagarmeVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"hook_1","type":"order.paid"}`)
	secret := "hub_secret"

	sign := func(body []byte) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		return hex.EncodeToString(mac.Sum(nil))
	}

	p := NewPagarmeProvider(&PagarmeConfig{WebhookSecret: secret}, nil)

	t.Run("accepts valid signature", func(t *testing.T) {
		assert.NoError(t, p.VerifyWebhookSignature(payload, sign(payload)))
	})

	t.Run("accepts sha256 prefixed signature", func(t *testing.T) {
		assert.NoError(t, p.VerifyWebhookSignature(payload, "sha256="+sign(payload)))
	})

	t.Run("rejects wrong signature", func(t *testing.T) {
		assert.Error(t, p.VerifyWebhookSignature(payload, sign([]byte("other"))))
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		assert.Error(t, p.VerifyWebhookSignature(payload, ""))
	})

	t.Run("accepts anything with no secret configured", func(t *testing.T) {
		open := NewPagarmeProvider(&PagarmeConfig{}, nil)
		assert.NoError(t, open.VerifyWebhookSignature(payload, ""))
		assert.NoError(t, open.VerifyWebhookSignature(payload, "garbage"))
	})
}

func TestParsePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  *pagarmePhone
	}{
		{"full international", "+5511999998888", &pagarmePhone{CountryCode: "55", AreaCode: "11", Number: "999998888"}},
		{"bare national", "11999998888", &pagarmePhone{CountryCode: "55", AreaCode: "11", Number: "999998888"}},
		{"landline", "1133334444", &pagarmePhone{CountryCode: "55", AreaCode: "11", Number: "33334444"}},
		{"too short", "12345", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePhone(tt.phone))
		})
	}
}
