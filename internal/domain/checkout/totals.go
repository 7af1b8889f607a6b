// internal/domain/checkout/totals.go
package checkout

import "math"

// SanitizedTotals is an internally consistent set of order totals.
// Invariants: 0 <= Discount <= Subtotal, Shipping >= 0, Total >= 0 and
// Total = Subtotal - Discount + Shipping + Tax.
type SanitizedTotals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping_total"`
	Discount float64 `json:"discount_total"`
	Tax      float64 `json:"tax_total"`
	Total    float64 `json:"total"`
}

// SanitizeTotals clamps untrusted shipping and discount inputs against the
// authoritative subtotal and computes tax and the grand total. Shipping and
// discount may come straight from a client-controlled request body; this is
// the last line of defense before totals are persisted, and the only place
// they may be persisted from.
//
// Non-finite or negative shipping becomes 0. Discount is clamped to
// [0, subtotal]. Tax is taxRate times max(0, subtotal - discount + shipping);
// a zero rate yields zero tax.
func SanitizeTotals(subtotal, shipping, discount, taxRate float64) SanitizedTotals {
	if math.IsNaN(shipping) || math.IsInf(shipping, 0) || shipping < 0 {
		shipping = 0
	}

	if math.IsNaN(discount) || math.IsInf(discount, 0) || discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	var tax float64
	if taxRate > 0 {
		taxable := subtotal - discount + shipping
		if taxable < 0 {
			taxable = 0
		}
		tax = taxable * taxRate
	}

	return SanitizedTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + shipping + tax,
	}
}

// ToMinorUnits rounds each component to whole minor currency units and
// recomputes the total from the rounded parts, so the persisted figures
// always satisfy total = subtotal - discount + shipping + tax exactly.
func (t SanitizedTotals) ToMinorUnits() (subtotal, shipping, discount, tax, total int64) {
	subtotal = int64(math.Round(t.Subtotal))
	shipping = int64(math.Round(t.Shipping))
	discount = int64(math.Round(t.Discount))
	tax = int64(math.Round(t.Tax))
	total = subtotal - discount + shipping + tax
	if total < 0 {
		total = 0
	}
	return
}
