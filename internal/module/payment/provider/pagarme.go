package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// PagarmeProvider implements the Provider interface for Pagar.me (Orders v5).
type PagarmeProvider struct {
	apiKey        string
	baseURL       string
	webhookSecret string
	pixExpiresIn  time.Duration
	boletoDueDays int
	client        *http.Client
	breaker       *gobreaker.CircuitBreaker[*pagarmeOrder]
}

// PagarmeConfig holds Pagar.me configuration.
type PagarmeConfig struct {
	APIKey        string
	BaseURL       string
	WebhookSecret string // empty disables signature verification
	PixExpiresIn  time.Duration
	BoletoDueDays int
}

// NewPagarmeProvider creates a new Pagar.me provider.
func NewPagarmeProvider(config *PagarmeConfig, client *http.Client) *PagarmeProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.pagar.me/core/v5"
	}
	pixExpiresIn := config.PixExpiresIn
	if pixExpiresIn == 0 {
		pixExpiresIn = time.Hour
	}
	boletoDueDays := config.BoletoDueDays
	if boletoDueDays == 0 {
		boletoDueDays = 3
	}

	breaker := gobreaker.NewCircuitBreaker[*pagarmeOrder](gobreaker.Settings{
		Name:    "pagarme",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &PagarmeProvider{
		apiKey:        config.APIKey,
		baseURL:       baseURL,
		webhookSecret: config.WebhookSecret,
		pixExpiresIn:  pixExpiresIn,
		boletoDueDays: boletoDueDays,
		client:        client,
		breaker:       breaker,
	}
}

// Name returns the provider name.
func (p *PagarmeProvider) Name() string {
	return "pagarme"
}

// --- Wire types (Orders v5) ---

type pagarmePhone struct {
	CountryCode string `json:"country_code"`
	AreaCode    string `json:"area_code"`
	Number      string `json:"number"`
}

type pagarmeCustomer struct {
	Name     string                  `json:"name"`
	Email    string                  `json:"email"`
	Document string                  `json:"document"`
	Type     string                  `json:"type"` // individual, company
	Phones   map[string]pagarmePhone `json:"phones,omitempty"`
}

type pagarmeItem struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type pagarmeCard struct {
	Number     string `json:"number"`
	HolderName string `json:"holder_name"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
	CVV        string `json:"cvv"`
}

type pagarmePayment struct {
	PaymentMethod string `json:"payment_method"`
	Pix           *struct {
		ExpiresIn int64 `json:"expires_in"`
	} `json:"pix,omitempty"`
	CreditCard *struct {
		Installments int         `json:"installments"`
		Card         pagarmeCard `json:"card"`
	} `json:"credit_card,omitempty"`
	Boleto *struct {
		DueAt string `json:"due_at"`
	} `json:"boleto,omitempty"`
}

type pagarmeOrderRequest struct {
	Code     string           `json:"code"`
	Customer pagarmeCustomer  `json:"customer"`
	Items    []pagarmeItem    `json:"items"`
	Payments []pagarmePayment `json:"payments"`
}

type pagarmeTransaction struct {
	QRCode    string `json:"qr_code,omitempty"`
	QRCodeURL string `json:"qr_code_url,omitempty"`
	Line      string `json:"line,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	PDF       string `json:"pdf,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	DueAt     string `json:"due_at,omitempty"`
}

type pagarmeCharge struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	LastTransaction *pagarmeTransaction `json:"last_transaction,omitempty"`
}

type pagarmeOrder struct {
	ID      string          `json:"id"`
	Code    string          `json:"code"`
	Status  string          `json:"status"`
	Charges []pagarmeCharge `json:"charges"`
}

type pagarmeError struct {
	Message string `json:"message"`
}

// CreateCharge creates an order with one charge.
func (p *PagarmeProvider) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	body, err := p.buildOrderRequest(req)
	if err != nil {
		return nil, err
	}

	order, err := p.breaker.Execute(func() (*pagarmeOrder, error) {
		return p.postOrder(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	return p.normalizeOrder(order)
}

func (p *PagarmeProvider) buildOrderRequest(req *ChargeRequest) (*pagarmeOrderRequest, error) {
	customer := pagarmeCustomer{
		Name:     req.Customer.Name,
		Email:    req.Customer.Email,
		Document: req.Customer.Document,
		Type:     "individual",
	}
	if req.Customer.IsCompany() {
		customer.Type = "company"
	}
	if phone := parsePhone(req.Customer.Phone); phone != nil {
		customer.Phones = map[string]pagarmePhone{"mobile_phone": *phone}
	}

	description := req.Description
	if description == "" {
		description = "Payment"
	}

	payment := pagarmePayment{PaymentMethod: req.Method}
	switch req.Method {
	case "pix":
		payment.Pix = &struct {
			ExpiresIn int64 `json:"expires_in"`
		}{ExpiresIn: int64(p.pixExpiresIn.Seconds())}
	case "credit_card":
		if req.Card == nil {
			return nil, fmt.Errorf("credit_card payment requires card data")
		}
		payment.CreditCard = &struct {
			Installments int         `json:"installments"`
			Card         pagarmeCard `json:"card"`
		}{
			Installments: 1,
			Card: pagarmeCard{
				Number:     req.Card.Number,
				HolderName: req.Card.HolderName,
				ExpMonth:   req.Card.ExpMonth,
				ExpYear:    req.Card.ExpYear,
				CVV:        req.Card.CVV,
			},
		}
	case "boleto":
		dueAt := time.Now().AddDate(0, 0, p.boletoDueDays).UTC().Format(time.RFC3339)
		payment.Boleto = &struct {
			DueAt string `json:"due_at"`
		}{DueAt: dueAt}
	default:
		return nil, fmt.Errorf("unsupported payment method for pagarme: %s", req.Method)
	}

	return &pagarmeOrderRequest{
		Code:     req.ReferenceID,
		Customer: customer,
		Items: []pagarmeItem{
			{Amount: req.Amount, Description: description, Quantity: 1},
		},
		Payments: []pagarmePayment{payment},
	}, nil
}

func (p *PagarmeProvider) postOrder(ctx context.Context, orderReq *pagarmeOrderRequest) (*pagarmeOrder, error) {
	payload, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(p.apiKey, "")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pagarme request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr pagarmeError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("pagarme: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("pagarme: unexpected status %d", resp.StatusCode)
	}

	var order pagarmeOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

func (p *PagarmeProvider) normalizeOrder(order *pagarmeOrder) (*ChargeResult, error) {
	if len(order.Charges) == 0 {
		return nil, fmt.Errorf("pagarme: order %s has no charges", order.ID)
	}
	charge := order.Charges[0]

	status := StatusPending
	if charge.Status == "paid" {
		status = StatusPaid
	}

	result := &ChargeResult{
		ExternalID: order.ID,
		Status:     status,
	}

	if tx := charge.LastTransaction; tx != nil {
		if tx.QRCode != "" {
			pix := &PixData{QRCode: tx.QRCode, QRCodeURL: tx.QRCodeURL}
			if t, err := time.Parse(time.RFC3339, tx.ExpiresAt); err == nil {
				pix.ExpiresAt = &t
			}
			result.Pix = pix
		}
		if tx.Line != "" {
			boleto := &BoletoData{Line: tx.Line, Barcode: tx.Barcode, PDFURL: tx.PDF}
			if t, err := time.Parse(time.RFC3339, tx.DueAt); err == nil {
				boleto.DueAt = &t
			}
			result.Boleto = boleto
		}
	}

	return result, nil
}

// VerifyWebhookSignature verifies the X-Hub-Signature HMAC of a webhook
// payload. With no secret configured the payload is accepted unverified;
// that matches Pagar.me deployments that ship without webhook signing.
func (p *PagarmeProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	if p.webhookSecret == "" {
		return nil
	}
	if signature == "" {
		return fmt.Errorf("missing signature header")
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// parsePhone splits a digits-only Brazilian phone number into the wire shape.
// Returns nil for numbers too short to split.
func parsePhone(phone string) *pagarmePhone {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		digits = digits[2:]
	}
	if len(digits) < 10 {
		return nil
	}

	return &pagarmePhone{
		CountryCode: "55",
		AreaCode:    digits[:2],
		Number:      digits[2:],
	}
}
