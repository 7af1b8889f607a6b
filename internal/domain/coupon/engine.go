// internal/domain/coupon/engine.go
package coupon

import (
	"math"
	"time"
)

// CartItem is the minimal view of a line item the engine needs for
// eligibility and proration.
type CartItem struct {
	ProductID  uint  `json:"product_id"`
	CategoryID uint  `json:"category_id"`
	LineTotal  int64 `json:"line_total"` // In minor currency units
}

// ItemDiscount is one item's prorated share of the total discount
type ItemDiscount struct {
	ProductID uint  `json:"product_id"`
	Amount    int64 `json:"amount"`
}

// EligibleItems filters items against the coupon's restriction sets. An item
// is eligible iff its product or its category matches a restricted set; a
// coupon with no restrictions makes every item eligible.
func EligibleItems(items []CartItem, productRestrictions, categoryRestrictions []uint) []CartItem {
	if len(productRestrictions) == 0 && len(categoryRestrictions) == 0 {
		return items
	}

	products := make(map[uint]struct{}, len(productRestrictions))
	for _, id := range productRestrictions {
		products[id] = struct{}{}
	}
	categories := make(map[uint]struct{}, len(categoryRestrictions))
	for _, id := range categoryRestrictions {
		categories[id] = struct{}{}
	}

	var eligible []CartItem
	for _, item := range items {
		if _, ok := products[item.ProductID]; ok {
			eligible = append(eligible, item)
			continue
		}
		if _, ok := categories[item.CategoryID]; ok {
			eligible = append(eligible, item)
		}
	}
	return eligible
}

// Apply computes the total discount and its per-item breakdown.
//
// For percent coupons the discount is round(eligibleSubtotal * value / 100).
// For fixed coupons it is min(value, eligibleSubtotal), so a fixed coupon can
// never push the eligible subset negative. Each item's share is prorated by
// its contribution to the eligible subtotal and rounded independently; the
// rounding remainder is assigned to the first eligible item, so the sum of
// item discounts always equals the total exactly.
func Apply(discountType DiscountType, value float64, items []CartItem, productRestrictions, categoryRestrictions []uint) (int64, []ItemDiscount) {
	eligible := EligibleItems(items, productRestrictions, categoryRestrictions)
	if len(eligible) == 0 {
		return 0, nil
	}

	var eligibleSubtotal int64
	for _, item := range eligible {
		eligibleSubtotal += item.LineTotal
	}
	if eligibleSubtotal <= 0 {
		return 0, nil
	}

	var total int64
	switch discountType {
	case DiscountTypePercent:
		total = int64(math.Round(float64(eligibleSubtotal) * value / 100))
	case DiscountTypeFixed:
		total = int64(math.Round(value))
		if total > eligibleSubtotal {
			total = eligibleSubtotal
		}
	default:
		return 0, nil
	}
	if total <= 0 {
		return 0, nil
	}

	discounts := make([]ItemDiscount, len(eligible))
	var distributed int64
	for i, item := range eligible {
		share := int64(math.Round(float64(total) * float64(item.LineTotal) / float64(eligibleSubtotal)))
		discounts[i] = ItemDiscount{ProductID: item.ProductID, Amount: share}
		distributed += share
	}

	// Rounding remainder goes to the first eligible item, never dropped
	// or duplicated.
	discounts[0].Amount += total - distributed

	return total, discounts
}

// validate runs the precondition checks in their contractual order:
// active flag, time window, global usage cap, per-user usage cap, minimum
// subtotal, eligibility. Existence is checked by the caller before loading.
func validate(c *Coupon, now time.Time, usedByUser int64, subtotal int64, items []CartItem) *ValidationError {
	if !c.IsActive {
		return newValidationError(ErrCodeInactive, "coupon %s is not active", c.Code)
	}

	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return newValidationError(ErrCodeNotStarted, "coupon %s is not valid yet", c.Code)
	}

	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return newValidationError(ErrCodeExpired, "coupon %s has expired", c.Code)
	}

	if c.MaxUsesTotal > 0 && c.UsedCount >= c.MaxUsesTotal {
		return newValidationError(ErrCodeMaxUses, "coupon %s has reached its usage limit", c.Code)
	}

	if c.MaxUsesPerUser > 0 && usedByUser >= int64(c.MaxUsesPerUser) {
		return newValidationError(ErrCodeMaxUsesUser, "you have already used coupon %s the maximum number of times", c.Code)
	}

	if c.MinSubtotal > 0 && subtotal < c.MinSubtotal {
		return newValidationError(ErrCodeMinSubtotal, "order subtotal does not meet the coupon minimum of %d", c.MinSubtotal)
	}

	if len(EligibleItems(items, c.ProductRestrictions(), c.CategoryRestrictions())) == 0 {
		return newValidationError(ErrCodeNoEligibleItems, "no items in the order are eligible for coupon %s", c.Code)
	}

	return nil
}
