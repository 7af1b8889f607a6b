// internal/domain/checkout/errors.go
package checkout

import "fmt"

// ErrorCode is the short discriminant carried by every checkout failure the
// caller is expected to recover from.
type ErrorCode string

const (
	ErrCodeNoItems ErrorCode = "NO_ITEMS"
	ErrCodeStock   ErrorCode = "STOCK"
	ErrCodeGating  ErrorCode = "GATING"
)

// CheckoutError is a typed, recoverable checkout failure. It propagates to
// the HTTP boundary unmodified so the caller can render a precise message.
type CheckoutError struct {
	Code         ErrorCode `json:"code"`
	Message      string    `json:"message"`
	VariantID    uint      `json:"variant_id,omitempty"`    // Set for STOCK failures
	BlockedItems []uint    `json:"blocked_items,omitempty"` // Set for GATING failures
}

// Error implements the error interface
func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed (%s): %s", e.Code, e.Message)
}

// NewStockError reports insufficient stock for a specific variant
func NewStockError(variantID uint, requested, available int) *CheckoutError {
	return &CheckoutError{
		Code:      ErrCodeStock,
		Message:   fmt.Sprintf("insufficient stock for variant %d: requested %d, available %d", variantID, requested, available),
		VariantID: variantID,
	}
}

// NewNoItemsError reports an order with no purchasable line items
func NewNoItemsError() *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeNoItems,
		Message: "no purchasable items in the order",
	}
}

// NewGatingError reports items blocked by an access gating rule
func NewGatingError(reason string, blockedItems []uint) *CheckoutError {
	return &CheckoutError{
		Code:         ErrCodeGating,
		Message:      reason,
		BlockedItems: blockedItems,
	}
}
