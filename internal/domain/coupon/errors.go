// internal/domain/coupon/errors.go
package coupon

import "fmt"

// ErrorCode identifies the first violated precondition during validation.
// Checks run in a fixed order, so the reported code is deterministic for a
// given coupon state; callers rely on that for precise error messages.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInactive        ErrorCode = "INACTIVE"
	ErrCodeNotStarted      ErrorCode = "NOT_STARTED"
	ErrCodeExpired         ErrorCode = "EXPIRED"
	ErrCodeMaxUses         ErrorCode = "MAX_USES"
	ErrCodeMaxUsesUser     ErrorCode = "MAX_USES_USER"
	ErrCodeMinSubtotal     ErrorCode = "MIN_SUBTOTAL"
	ErrCodeNoEligibleItems ErrorCode = "NO_ELIGIBLE_ITEMS"
)

// ValidationError is a typed, user-recoverable coupon rejection
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("coupon rejected (%s): %s", e.Code, e.Message)
}

func newValidationError(code ErrorCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
