// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-engine/internal/domain/checkout"
	"github.com/your-org/storefront-engine/internal/domain/coupon"
)

// respondDomainError maps typed domain failures to precise HTTP responses.
// Typed codes pass through unmodified so clients can render exact messages;
// anything untyped is an internal error.
func respondDomainError(c *gin.Context, err error) {
	var checkoutErr *checkout.CheckoutError
	if errors.As(err, &checkoutErr) {
		status := http.StatusUnprocessableEntity
		if checkoutErr.Code == checkout.ErrCodeStock {
			status = http.StatusConflict
		}
		if checkoutErr.Code == checkout.ErrCodeGating {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"code":          checkoutErr.Code,
			"error":         checkoutErr.Message,
			"variant_id":    checkoutErr.VariantID,
			"blocked_items": checkoutErr.BlockedItems,
		})
		return
	}

	var couponErr *coupon.ValidationError
	if errors.As(err, &couponErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":  couponErr.Code,
			"error": couponErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}
