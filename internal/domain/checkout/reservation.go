// internal/domain/checkout/reservation.go
package checkout

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-engine/internal/domain/catalog"
	"github.com/your-org/storefront-engine/internal/domain/coupon"
	"github.com/your-org/storefront-engine/internal/domain/order"
	"gorm.io/gorm"
)

// reservationInput carries everything the reservation transaction persists
type reservationInput struct {
	UserID        uint
	Email         string
	Currency      string
	PaymentMethod string
	Items         []PreparedLineItem
	Subtotal      int64
	Discount      int64
	Shipping      int64
	Tax           int64
	Total         int64
	Coupon        *coupon.Coupon
}

// reserve makes order creation and inventory decrement atomic with respect
// to every other concurrent checkout. Operations are strictly ordered: all
// stock decrements, then order and line items, then the payment placeholder,
// then the coupon redemption, then digital entitlements. A failure at any
// step rolls back every prior write, including already-decremented stock.
func (s *Service) reserve(ctx context.Context, in *reservationInput) (*order.Order, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Conditional decrements. The WHERE stock >= quantity clause makes the
	// decrement a single atomic storage operation; zero rows affected means
	// a concurrent checkout got there first, and the whole order fails with
	// the same STOCK code a stale pre-check would produce.
	for _, item := range in.Items {
		if item.VariantID == nil {
			continue
		}

		result := tx.Model(&catalog.ProductVariant{}).
			Where("id = ? AND stock >= ?", *item.VariantID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to decrement stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, &CheckoutError{
				Code:      ErrCodeStock,
				Message:   fmt.Sprintf("variant %d was oversold by a concurrent request", *item.VariantID),
				VariantID: *item.VariantID,
			}
		}
	}

	o := order.Order{
		OrderNumber:    order.NewOrderNumber(),
		UserID:         in.UserID,
		Email:          in.Email,
		Status:         order.OrderStatusPending,
		SubtotalAmount: in.Subtotal,
		DiscountAmount: in.Discount,
		ShippingAmount: in.Shipping,
		TaxAmount:      in.Tax,
		TotalAmount:    in.Total,
		Currency:       in.Currency,
	}
	if in.Coupon != nil {
		o.CouponCode = in.Coupon.Code
	}

	if err := tx.Create(&o).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range in.Items {
		orderItem := order.OrderItem{
			OrderID:          o.ID,
			ProductID:        item.ProductID,
			ProductVariantID: item.VariantID,
			SKU:              item.SKU,
			Name:             item.Name,
			Quantity:         item.Quantity,
			Price:            item.UnitPrice,
			TotalPrice:       item.LineTotal(),
			IsDigital:        item.IsDigital,
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	payment := order.Payment{
		OrderID:   o.ID,
		Reference: order.NewPaymentReference(),
		Method:    in.PaymentMethod,
		Amount:    in.Total,
		Currency:  in.Currency,
		Status:    order.PaymentStatusPending,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create payment placeholder: %w", err)
	}

	if in.Coupon != nil {
		verr, err := s.coupons.Redeem(tx, in.Coupon, in.UserID, o.ID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if verr != nil {
			// Lost the race on the usage cap; no partial order survives.
			tx.Rollback()
			return nil, verr
		}
	}

	var digitalProductIDs []uint
	for _, item := range in.Items {
		if item.IsDigital {
			digitalProductIDs = append(digitalProductIDs, item.ProductID)
		}
	}
	if err := s.deliveries.GrantEntitlements(tx, in.UserID, o.ID, digitalProductIDs); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return &o, nil
}
