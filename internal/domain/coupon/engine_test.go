// internal/domain/coupon/engine_test.go
package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligibleItemsNoRestrictionsMeansEveryItem(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, CategoryID: 10, LineTotal: 100},
		{ProductID: 2, CategoryID: 20, LineTotal: 200},
	}
	assert.Equal(t, items, EligibleItems(items, nil, nil))
}

func TestEligibleItemsMatchesProductOrCategory(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, CategoryID: 10, LineTotal: 100}, // matches product set
		{ProductID: 2, CategoryID: 20, LineTotal: 200}, // matches category set
		{ProductID: 3, CategoryID: 30, LineTotal: 300}, // matches neither
	}

	eligible := EligibleItems(items, []uint{1}, []uint{20})
	require.Len(t, eligible, 2)
	assert.Equal(t, uint(1), eligible[0].ProductID)
	assert.Equal(t, uint(2), eligible[1].ProductID)
}

func TestApplyPercentProratesExactly(t *testing.T) {
	// Three odd line totals so independent rounding leaves a remainder.
	items := []CartItem{
		{ProductID: 1, CategoryID: 10, LineTotal: 333},
		{ProductID: 2, CategoryID: 10, LineTotal: 333},
		{ProductID: 3, CategoryID: 10, LineTotal: 334},
	}

	total, discounts := Apply(DiscountTypePercent, 10, items, nil, nil)
	assert.Equal(t, int64(100), total) // round(1000 * 10 / 100)

	var distributed int64
	for _, d := range discounts {
		distributed += d.Amount
	}
	assert.Equal(t, total, distributed)
}

func TestApplyPercentRestrictedToSubset(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, CategoryID: 10, LineTotal: 1000},
		{ProductID: 2, CategoryID: 20, LineTotal: 5000},
	}

	total, discounts := Apply(DiscountTypePercent, 10, items, []uint{1}, nil)
	assert.Equal(t, int64(100), total)
	require.Len(t, discounts, 1)
	assert.Equal(t, uint(1), discounts[0].ProductID)
	assert.Equal(t, int64(100), discounts[0].Amount)
}

func TestApplyFixedCapsAtEligibleSubtotal(t *testing.T) {
	items := []CartItem{{ProductID: 1, CategoryID: 10, LineTotal: 1000}}

	total, discounts := Apply(DiscountTypeFixed, 999999, items, nil, nil)
	assert.Equal(t, int64(1000), total)
	require.Len(t, discounts, 1)
	assert.Equal(t, int64(1000), discounts[0].Amount)
}

func TestApplyFixedSplitsAcrossItems(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, CategoryID: 10, LineTotal: 100},
		{ProductID: 2, CategoryID: 10, LineTotal: 200},
	}

	total, discounts := Apply(DiscountTypeFixed, 99, items, nil, nil)
	assert.Equal(t, int64(99), total)
	require.Len(t, discounts, 2)
	assert.Equal(t, total, discounts[0].Amount+discounts[1].Amount)
}

func TestApplyNoEligibleItems(t *testing.T) {
	items := []CartItem{{ProductID: 1, CategoryID: 10, LineTotal: 1000}}

	total, discounts := Apply(DiscountTypePercent, 10, items, []uint{99}, nil)
	assert.Equal(t, int64(0), total)
	assert.Nil(t, discounts)
}

func validCoupon() *Coupon {
	return &Coupon{
		ID:       1,
		Code:     "SAVE10",
		Type:     DiscountTypePercent,
		Value:    10,
		IsActive: true,
	}
}

func TestValidateOrderOfChecks(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	items := []CartItem{{ProductID: 1, CategoryID: 10, LineTotal: 1000}}

	cases := []struct {
		name     string
		mutate   func(c *Coupon)
		usedByUser int64
		subtotal int64
		wantCode ErrorCode
	}{
		{
			name:     "inactive precedes everything",
			mutate:   func(c *Coupon) { c.IsActive = false; c.StartsAt = &future },
			subtotal: 1000,
			wantCode: ErrCodeInactive,
		},
		{
			name:     "not started",
			mutate:   func(c *Coupon) { c.StartsAt = &future },
			subtotal: 1000,
			wantCode: ErrCodeNotStarted,
		},
		{
			name:     "expired",
			mutate:   func(c *Coupon) { c.EndsAt = &past },
			subtotal: 1000,
			wantCode: ErrCodeExpired,
		},
		{
			name:     "global cap reached",
			mutate:   func(c *Coupon) { c.MaxUsesTotal = 5; c.UsedCount = 5 },
			subtotal: 1000,
			wantCode: ErrCodeMaxUses,
		},
		{
			name:       "per-user cap reached",
			mutate:     func(c *Coupon) { c.MaxUsesPerUser = 1 },
			usedByUser: 1,
			subtotal:   1000,
			wantCode:   ErrCodeMaxUsesUser,
		},
		{
			name:     "below minimum subtotal",
			mutate:   func(c *Coupon) { c.MinSubtotal = 5000 },
			subtotal: 1000,
			wantCode: ErrCodeMinSubtotal,
		},
		{
			name:     "no eligible items",
			mutate:   func(c *Coupon) { c.Products = []CouponProduct{{CouponID: 1, ProductID: 99}} },
			subtotal: 1000,
			wantCode: ErrCodeNoEligibleItems,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCoupon()
			tc.mutate(c)
			verr := validate(c, now, tc.usedByUser, tc.subtotal, items)
			require.NotNil(t, verr)
			assert.Equal(t, tc.wantCode, verr.Code)
		})
	}
}

func TestValidatePasses(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	items := []CartItem{{ProductID: 1, CategoryID: 10, LineTotal: 1000}}

	c := validCoupon()
	c.MaxUsesTotal = 10
	c.UsedCount = 9
	c.MaxUsesPerUser = 2
	c.MinSubtotal = 500

	assert.Nil(t, validate(c, now, 1, 1000, items))
}

func TestValidateZeroCapsMeanUnlimited(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	items := []CartItem{{ProductID: 1, CategoryID: 10, LineTotal: 1000}}

	c := validCoupon()
	c.UsedCount = 100000

	assert.Nil(t, validate(c, now, 50, 1000, items))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "SAVE10", NormalizeCode("Save10"))
}
