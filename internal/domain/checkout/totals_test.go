// internal/domain/checkout/totals_test.go
package checkout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTotalsComputesTaxAndTotal(t *testing.T) {
	totals := SanitizeTotals(260, 10, 5, 0.1)

	assert.Equal(t, 260.0, totals.Subtotal)
	assert.Equal(t, 10.0, totals.Shipping)
	assert.Equal(t, 5.0, totals.Discount)
	assert.InDelta(t, 26.5, totals.Tax, 1e-9) // (260 - 5 + 10) * 0.1
	assert.InDelta(t, 291.5, totals.Total, 1e-9)
}

func TestSanitizeTotalsClampsGarbageInputs(t *testing.T) {
	cases := []struct {
		name               string
		shipping, discount float64
		wantShipping       float64
		wantDiscount       float64
	}{
		{"negative shipping", -10, 0, 0, 0},
		{"NaN shipping", math.NaN(), 0, 0, 0},
		{"infinite shipping", math.Inf(1), 0, 0, 0},
		{"negative discount", 0, -50, 0, 0},
		{"NaN discount", 0, math.NaN(), 0, 0},
		{"infinite discount", 0, math.Inf(-1), 0, 0},
		{"discount above subtotal", 0, 500, 0, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := SanitizeTotals(100, tc.shipping, tc.discount, 0)
			assert.Equal(t, tc.wantShipping, totals.Shipping)
			assert.Equal(t, tc.wantDiscount, totals.Discount)
			assert.False(t, math.IsNaN(totals.Total))
			assert.False(t, math.IsInf(totals.Total, 0))
		})
	}
}

func TestSanitizeTotalsZeroTaxRate(t *testing.T) {
	totals := SanitizeTotals(100, 10, 20, 0)
	assert.Equal(t, 0.0, totals.Tax)
	assert.Equal(t, 90.0, totals.Total)
}

func TestSanitizeTotalsFullDiscountStillTaxesShipping(t *testing.T) {
	totals := SanitizeTotals(100, 10, 100, 0.2)
	assert.InDelta(t, 2.0, totals.Tax, 1e-9) // only shipping is taxable
	assert.InDelta(t, 12.0, totals.Total, 1e-9)
}

func TestToMinorUnitsRecomputesTotalFromRoundedParts(t *testing.T) {
	totals := SanitizedTotals{
		Subtotal: 260.4,
		Shipping: 10.5,
		Discount: 5.4,
		Tax:      26.5,
	}

	subtotal, shipping, discount, tax, total := totals.ToMinorUnits()
	assert.Equal(t, int64(260), subtotal)
	assert.Equal(t, int64(11), shipping) // math.Round half away from zero
	assert.Equal(t, int64(5), discount)
	assert.Equal(t, int64(27), tax)
	// Total derives from the rounded parts, never rounded independently
	assert.Equal(t, subtotal-discount+shipping+tax, total)
}

func TestToMinorUnitsNeverNegative(t *testing.T) {
	// Rounding can push discount past subtotal by one unit
	totals := SanitizedTotals{Subtotal: 10.4, Discount: 10.6}
	_, _, _, _, total := totals.ToMinorUnits()
	assert.Equal(t, int64(0), total)
}
