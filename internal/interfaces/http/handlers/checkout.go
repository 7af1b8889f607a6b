// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-engine/internal/domain/checkout"
	"github.com/your-org/storefront-engine/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	service *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":               result.Order,
		"dropped_product_ids": result.DroppedProductIDs,
		"coupon_discount":     result.CouponDiscount,
		"item_discounts":      result.ItemDiscounts,
	})
}

// ValidateCouponRequest represents a coupon validation request
type ValidateCouponRequest struct {
	Code  string                     `json:"code" binding:"required"`
	Items []checkout.LineItemRequest `json:"items" binding:"required"`
}

// ValidateCoupon handles POST /coupons/validate
func (h *CheckoutHandler) ValidateCoupon(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	coupon, discount, verr, err := h.service.ValidateCoupon(c.Request.Context(), userID, req.Code, req.Items)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if verr != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":      false,
			"error_code": verr.Code,
			"error":      verr.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"coupon":   coupon,
		"discount": discount,
	})
}
