// internal/domain/coupon/entity.go
package coupon

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DiscountType represents how a coupon's value is interpreted
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent" // Value is percentage points
	DiscountTypeFixed   DiscountType = "fixed"   // Value is a minor-currency-unit amount
)

// Coupon represents a discount coupon. Codes are unique case-insensitively.
// UsedCount is a derived, monotonically increasing counter; this engine
// never decrements it.
type Coupon struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Code           string         `gorm:"not null;size:64" json:"code"`
	Type           DiscountType   `gorm:"not null;size:16" json:"type"`
	Value          float64        `gorm:"not null" json:"value"`
	MinSubtotal    int64          `gorm:"not null;default:0" json:"min_subtotal"`      // 0 means no minimum
	MaxUsesTotal   int            `gorm:"not null;default:0" json:"max_uses_total"`    // 0 means unlimited
	MaxUsesPerUser int            `gorm:"not null;default:0" json:"max_uses_per_user"` // 0 means unlimited
	UsedCount      int            `gorm:"not null;default:0" json:"used_count"`
	StartsAt       *time.Time     `gorm:"index" json:"starts_at"`
	EndsAt         *time.Time     `gorm:"index" json:"ends_at"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Eligibility restrictions; empty means every item is eligible
	Products   []CouponProduct  `gorm:"foreignKey:CouponID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"products,omitempty"`
	Categories []CouponCategory `gorm:"foreignKey:CouponID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"categories,omitempty"`
}

// CouponProduct restricts a coupon to a product
type CouponProduct struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CouponID  uint `gorm:"not null;index" json:"coupon_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`
}

// CouponCategory restricts a coupon to a category
type CouponCategory struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CouponID   uint `gorm:"not null;index" json:"coupon_id"`
	CategoryID uint `gorm:"not null;index" json:"category_id"`
}

// CouponRedemption records one use of a coupon by a user on an order.
// Row existence is the source of truth for per-user usage limits.
type CouponRedemption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CouponID  uint      `gorm:"not null;index" json:"coupon_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Coupon) TableName() string           { return "coupons" }
func (CouponProduct) TableName() string    { return "coupon_products" }
func (CouponCategory) TableName() string   { return "coupon_categories" }
func (CouponRedemption) TableName() string { return "coupon_redemptions" }

// NormalizeCode canonicalizes a coupon code for case-insensitive matching
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ProductRestrictions returns the restricted product ID set
func (c *Coupon) ProductRestrictions() []uint {
	ids := make([]uint, 0, len(c.Products))
	for _, p := range c.Products {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// CategoryRestrictions returns the restricted category ID set
func (c *Coupon) CategoryRestrictions() []uint {
	ids := make([]uint, 0, len(c.Categories))
	for _, cat := range c.Categories {
		ids = append(ids, cat.CategoryID)
	}
	return ids
}
