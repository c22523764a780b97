package paymentlink

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altopay/gateway/internal/module/payment"
	"github.com/altopay/gateway/internal/utils/middleware"
)

// Handler handles HTTP requests for payment links.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new payment link handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the authenticated link management routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	links := r.Group("/links")
	{
		links.POST("", h.CreateLink)
		links.GET("", h.ListLinks)
		links.DELETE("/:id", h.DeactivateLink)
	}
}

// RegisterPublicRoutes registers the payer-facing routes.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	links := r.Group("/links")
	{
		links.GET("/:slug", h.GetPublicLink)
		links.POST("/:slug/pay", h.PayLink)
	}
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(c *gin.Context) {
	merchantID := middleware.GetMerchantID(c)
	if merchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.CreateLink(c.Request.Context(), merchantID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListLinks handles GET /links.
func (h *Handler) ListLinks(c *gin.Context) {
	merchantID := middleware.GetMerchantID(c)
	if merchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	links, err := h.service.ListLinks(c.Request.Context(), merchantID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// DeactivateLink handles DELETE /links/:id.
func (h *Handler) DeactivateLink(c *gin.Context) {
	merchantID := middleware.GetMerchantID(c)
	if merchantID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	if err := h.service.DeactivateLink(c.Request.Context(), merchantID, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "link deactivated"})
}

// GetPublicLink handles GET /links/:slug.
func (h *Handler) GetPublicLink(c *gin.Context) {
	resp, err := h.service.GetPublicLink(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PayLink handles POST /links/:slug/pay.
func (h *Handler) PayLink(c *gin.Context) {
	var req PayLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.PayLink(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment link not found"})
	case errors.Is(err, ErrLinkInactive), errors.Is(err, ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, ErrMethodNotAllowed),
		errors.Is(err, ErrNoMethods),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidPaymentMethod),
		errors.Is(err, payment.ErrInvalidDocument),
		errors.Is(err, payment.ErrUnsupportedMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("payment link request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
