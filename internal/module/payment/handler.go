package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altopay/gateway/internal/utils/middleware"
)

// Handler handles HTTP requests for payments.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the authenticated payment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListTransactions)
		payments.GET("/:id", h.GetTransaction)
	}
	r.GET("/activity", h.ListActivityLogs)
}

// CreatePayment handles POST /payments.
func (h *Handler) CreatePayment(c *gin.Context) {
	merchantID := middleware.GetMerchantID(c)
	if merchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.CreatePayment(c.Request.Context(), merchantID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTransaction handles GET /payments/:id.
func (h *Handler) GetTransaction(c *gin.Context) {
	merchantID := middleware.GetMerchantID(c)
	if merchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	resp, err := h.service.GetTransaction(c.Request.Context(), merchantID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListTransactions handles GET /payments.
func (h *Handler) ListTransactions(c *gin.Context) {
	merchantID := middleware.GetMerchantID(c)
	if merchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.ListTransactions(c.Request.Context(), merchantID, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListActivityLogs handles GET /activity.
func (h *Handler) ListActivityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.service.ListActivityLogs(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": logs})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var rejected *ProviderRejectedError
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	case errors.As(err, &rejected):
		// The provider turned the charge down. Its message goes back to the
		// caller untouched so they can see the rejection reason.
		c.JSON(http.StatusBadRequest, gin.H{"error": rejected.Message})
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrUnsupportedMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrProviderNotFound):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment provider unavailable"})
	default:
		h.logger.Error("payment request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
