// internal/domain/checkout/service.go
package checkout

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-engine/internal/config"
	"github.com/your-org/storefront-engine/internal/domain/catalog"
	"github.com/your-org/storefront-engine/internal/domain/coupon"
	"github.com/your-org/storefront-engine/internal/domain/delivery"
	"github.com/your-org/storefront-engine/internal/domain/gating"
	"github.com/your-org/storefront-engine/internal/domain/order"
	"github.com/your-org/storefront-engine/internal/domain/user"
	"gorm.io/gorm"
)

// Service turns a mutable cart into an immutable, financially consistent
// order. Each checkout is one request-scoped unit of work; the only shared
// mutable state is variant stock and coupon usage, both guarded by atomic
// conditional updates in storage rather than in-process locks.
type Service struct {
	db         *gorm.DB
	config     *config.Config
	log        *logrus.Logger
	snapshots  *catalog.SnapshotReader
	coupons    *coupon.Service
	gate       *gating.Evaluator
	deliveries *delivery.Service
	users      *user.Service
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, snapshots *catalog.SnapshotReader, coupons *coupon.Service, gate *gating.Evaluator, deliveries *delivery.Service, users *user.Service) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		log:        log,
		snapshots:  snapshots,
		coupons:    coupons,
		gate:       gate,
		deliveries: deliveries,
		users:      users,
	}
}

// CheckoutRequest represents checkout data from the client. Shipping and
// discount totals are untrusted and sanitized server-side.
type CheckoutRequest struct {
	Items         []LineItemRequest `json:"items" binding:"required"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	ShippingTotal float64           `json:"shipping_total"`
	DiscountTotal float64           `json:"discount_total"`
	PaymentMethod string            `json:"payment_method"`
}

// CheckoutResult is the outcome of a successful checkout
type CheckoutResult struct {
	Order *order.Order `json:"order"`
	// DroppedProductIDs lists stale cart entries that were silently
	// excluded, so the client can reconcile its cart.
	DroppedProductIDs []uint                `json:"dropped_product_ids,omitempty"`
	CouponDiscount    int64                 `json:"coupon_discount,omitempty"`
	ItemDiscounts     []coupon.ItemDiscount `json:"item_discounts,omitempty"`
}

// Checkout runs the full order finalization path: catalog snapshot, line
// item preparation, access gating, coupon validation, totals sanitization
// and the stock reservation transaction. Typed domain failures
// (*CheckoutError, *coupon.ValidationError) propagate unmodified so the
// boundary can render precise messages.
func (s *Service) Checkout(ctx context.Context, userID uint, req *CheckoutRequest) (*CheckoutResult, error) {
	buyer, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(req.Items))
	variantIDs := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
		if item.VariantID != nil {
			variantIDs = append(variantIDs, *item.VariantID)
		}
	}

	snapshot, err := s.snapshots.Load(ctx, productIDs, variantIDs)
	if err != nil {
		return nil, err
	}

	prepared, err := PrepareOrderItems(req.Items, snapshot.Products, snapshot.Variants)
	if err != nil {
		return nil, err
	}

	gatingItems := make([]gating.Item, len(prepared.Items))
	for i, item := range prepared.Items {
		gatingItems[i] = gating.Item{ProductID: item.ProductID, CategoryID: item.CategoryID}
	}
	decision, err := s.gate.CheckCheckout(ctx, gatingItems, buyer.DiscordID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, NewGatingError(decision.Reason, decision.BlockedItems)
	}

	var (
		appliedCoupon  *coupon.Coupon
		couponDiscount int64
		itemDiscounts  []coupon.ItemDiscount
	)
	if req.CouponCode != "" {
		cartItems := make([]coupon.CartItem, len(prepared.Items))
		for i, item := range prepared.Items {
			cartItems[i] = coupon.CartItem{
				ProductID:  item.ProductID,
				CategoryID: item.CategoryID,
				LineTotal:  item.LineTotal(),
			}
		}

		c, verr, err := s.coupons.Validate(ctx, req.CouponCode, userID, prepared.Subtotal, cartItems)
		if err != nil {
			return nil, err
		}
		if verr != nil {
			return nil, verr
		}

		appliedCoupon = c
		couponDiscount, itemDiscounts = coupon.Apply(c.Type, c.Value, cartItems, c.ProductRestrictions(), c.CategoryRestrictions())
	}

	// A validated coupon is the authoritative discount source; otherwise
	// the client-claimed discount goes through the sanitizer's clamps.
	discountInput := req.DiscountTotal
	if appliedCoupon != nil {
		discountInput = float64(couponDiscount)
	}

	totals := SanitizeTotals(float64(prepared.Subtotal), req.ShippingTotal, discountInput, s.config.Checkout.TaxRate)
	subtotal, shipping, discount, tax, total := totals.ToMinorUnits()

	createdOrder, err := s.reserve(ctx, &reservationInput{
		UserID:        userID,
		Email:         buyer.Email,
		Currency:      s.config.Checkout.Currency,
		PaymentMethod: req.PaymentMethod,
		Items:         prepared.Items,
		Subtotal:      subtotal,
		Discount:      discount,
		Shipping:      shipping,
		Tax:           tax,
		Total:         total,
		Coupon:        appliedCoupon,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     createdOrder.ID,
		"order_number": createdOrder.OrderNumber,
		"user_id":      userID,
		"total":        createdOrder.TotalAmount,
		"coupon":       createdOrder.CouponCode,
	}).Info("Order created")

	if len(prepared.DroppedProductIDs) > 0 {
		s.log.WithFields(logrus.Fields{
			"order_id":    createdOrder.ID,
			"product_ids": prepared.DroppedProductIDs,
		}).Warn("Stale cart items dropped during checkout")
	}

	return &CheckoutResult{
		Order:             createdOrder,
		DroppedProductIDs: prepared.DroppedProductIDs,
		CouponDiscount:    couponDiscount,
		ItemDiscounts:     itemDiscounts,
	}, nil
}

// ValidateCoupon exposes the optimistic coupon check for the storefront's
// cart page. The result is a hint; the reservation transaction has the
// final word on usage caps.
func (s *Service) ValidateCoupon(ctx context.Context, userID uint, code string, items []LineItemRequest) (*coupon.Coupon, int64, *coupon.ValidationError, error) {
	productIDs := make([]uint, 0, len(items))
	variantIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
		if item.VariantID != nil {
			variantIDs = append(variantIDs, *item.VariantID)
		}
	}

	snapshot, err := s.snapshots.Load(ctx, productIDs, variantIDs)
	if err != nil {
		return nil, 0, nil, err
	}

	prepared, err := PrepareOrderItems(items, snapshot.Products, snapshot.Variants)
	if err != nil {
		return nil, 0, nil, err
	}

	cartItems := make([]coupon.CartItem, len(prepared.Items))
	for i, item := range prepared.Items {
		cartItems[i] = coupon.CartItem{
			ProductID:  item.ProductID,
			CategoryID: item.CategoryID,
			LineTotal:  item.LineTotal(),
		}
	}

	c, verr, err := s.coupons.Validate(ctx, code, userID, prepared.Subtotal, cartItems)
	if err != nil || verr != nil {
		return nil, 0, verr, err
	}

	discount, _ := coupon.Apply(c.Type, c.Value, cartItems, c.ProductRestrictions(), c.CategoryRestrictions())
	return c, discount, nil, nil
}
