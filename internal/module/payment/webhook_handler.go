package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody bounds inbound webhook payloads.
const maxWebhookBody = 1 << 20

// WebhookHandler handles inbound provider webhooks.
type WebhookHandler struct {
	service  Service
	registry *ProviderRegistry
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service Service, registry *ProviderRegistry, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, registry: registry, logger: logger}
}

// RegisterRoutes registers the webhook routes. These are unauthenticated;
// trust comes from the provider signature.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/pagarme", h.Pagarme)
		webhooks.POST("/stripe", h.Stripe)
	}
}

// pagarmeEnvelope is the Pagar.me webhook envelope.
type pagarmeEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		ID    string `json:"id"`
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	} `json:"data"`
}

// Pagarme handles POST /webhooks/pagarme.
func (h *WebhookHandler) Pagarme(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	prov, err := h.registry.Get(ProviderPagarme)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		return
	}
	if err := prov.VerifyWebhookSignature(payload, c.GetHeader("X-Hub-Signature")); err != nil {
		h.logger.Warn("pagarme webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var env pagarmeEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if env.ID == "" || env.Type == "" || env.Data.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// charge.* events carry the parent order; the ledger correlates on the
	// order id. order.* events carry it directly.
	objectID := env.Data.ID
	if env.Data.Order.ID != "" {
		objectID = env.Data.Order.ID
	}

	result, err := h.service.ApplyProviderEvent(c.Request.Context(), ProviderPagarme, env.ID, env.Type, objectID, payload)
	switch {
	case errors.Is(err, ErrWebhookEventExists):
		c.JSON(http.StatusOK, gin.H{"message": "event already processed"})
	case errors.Is(err, ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "transaction not found"})
	case err != nil:
		h.logger.Error("pagarme webhook processing failed",
			zap.String("event_id", env.ID),
			zap.String("event_type", env.Type),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message":        "event processed",
			"transaction_id": result.TransactionID,
			"old_status":     result.OldStatus,
			"new_status":     result.NewStatus,
		})
	}
}

// stripeEvent is the subset of a Stripe event the gateway needs.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string `json:"id"`
			PaymentIntent string `json:"payment_intent"`
		} `json:"object"`
	} `json:"data"`
}

// Stripe handles POST /webhooks/stripe.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	prov, err := h.registry.Get(ProviderStripe)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		return
	}
	if err := prov.VerifyWebhookSignature(payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.logger.Warn("stripe webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if event.ID == "" || event.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// payment_intent.* events are keyed by the intent itself; charge and
	// dispute events reference the intent they belong to.
	objectID := event.Data.Object.ID
	if event.Data.Object.PaymentIntent != "" {
		objectID = event.Data.Object.PaymentIntent
	}

	_, err = h.service.ApplyProviderEvent(c.Request.Context(), ProviderStripe, event.ID, event.Type, objectID, payload)
	switch {
	case errors.Is(err, ErrWebhookEventExists):
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, ErrTransactionNotFound):
		// Acknowledge so Stripe does not disable the endpoint over events the
		// ledger cannot match; the marker lets operators spot them. The event
		// is not recorded, so a resend can still apply once the row exists.
		c.JSON(http.StatusOK, gin.H{"received": true, "result": "transaction_not_found"})
	case err != nil:
		h.logger.Error("stripe webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
