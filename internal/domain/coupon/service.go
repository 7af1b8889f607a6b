// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles coupon validation and redemption
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{
		db:  db,
		log: log,
	}
}

// Validate checks a coupon code against usage, time and eligibility
// constraints. A nil ValidationError means the coupon may be applied.
//
// This is the optimistic, user-facing check; the usage caps are enforced
// again atomically by Redeem inside the order transaction, so a coupon
// passing here can still lose the race at commit time.
func (s *Service) Validate(ctx context.Context, code string, userID uint, subtotal int64, items []CartItem) (*Coupon, *ValidationError, error) {
	var c Coupon
	result := s.db.WithContext(ctx).
		Preload("Products").
		Preload("Categories").
		Where("LOWER(code) = LOWER(?)", NormalizeCode(code)).
		First(&c)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, newValidationError(ErrCodeNotFound, "coupon %s does not exist", code), nil
		}
		return nil, nil, fmt.Errorf("failed to load coupon: %w", result.Error)
	}

	var usedByUser int64
	if c.MaxUsesPerUser > 0 {
		if err := s.db.WithContext(ctx).Model(&CouponRedemption{}).
			Where("coupon_id = ? AND user_id = ?", c.ID, userID).
			Count(&usedByUser).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to count coupon redemptions: %w", err)
		}
	}

	if verr := validate(&c, time.Now().UTC(), usedByUser, subtotal, items); verr != nil {
		return nil, verr, nil
	}

	return &c, nil, nil
}

// Redeem enforces the usage caps atomically and records the redemption.
// It must run inside the same transaction as stock reservation, so a failed
// order never consumes coupon usage and a capped coupon can never be
// redeemed past its limit by concurrent checkouts.
func (s *Service) Redeem(tx *gorm.DB, c *Coupon, userID, orderID uint) (*ValidationError, error) {
	// Increment-if-below-limit: the WHERE clause makes the global cap a
	// single atomic storage operation. Zero rows affected means a
	// concurrent checkout consumed the last use after our pre-check.
	result := tx.Model(&Coupon{}).
		Where("id = ? AND (max_uses_total = 0 OR used_count < max_uses_total)", c.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to increment coupon usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return newValidationError(ErrCodeMaxUses, "coupon %s has reached its usage limit", c.Code), nil
	}

	if c.MaxUsesPerUser > 0 {
		var usedByUser int64
		if err := tx.Model(&CouponRedemption{}).
			Where("coupon_id = ? AND user_id = ?", c.ID, userID).
			Count(&usedByUser).Error; err != nil {
			return nil, fmt.Errorf("failed to count coupon redemptions: %w", err)
		}
		if usedByUser >= int64(c.MaxUsesPerUser) {
			return newValidationError(ErrCodeMaxUsesUser, "you have already used coupon %s the maximum number of times", c.Code), nil
		}
	}

	redemption := CouponRedemption{
		CouponID:  c.ID,
		UserID:    userID,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&redemption).Error; err != nil {
		return nil, fmt.Errorf("failed to record coupon redemption: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"coupon_id": c.ID,
		"user_id":   userID,
		"order_id":  orderID,
	}).Info("Coupon redeemed")

	return nil, nil
}
