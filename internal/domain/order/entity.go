// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents the order entity. Orders are created atomically with
// their items and initial payment placeholder, always in pending status, or
// not at all.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	Email       string      `gorm:"not null;size:255" json:"email"`
	Status      OrderStatus `gorm:"not null;default:'pending'" json:"status"`

	// Financial record, in minor currency units.
	// Invariant: TotalAmount = SubtotalAmount - DiscountAmount +
	// ShippingAmount + TaxAmount, and TotalAmount >= 0.
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"`
	ShippingAmount int64 `gorm:"default:0" json:"shipping_amount"`
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	Currency   string `gorm:"size:3;default:'USD'" json:"currency"`
	CouponCode string `gorm:"size:64" json:"coupon_code"`
	Notes      string `gorm:"type:text" json:"notes"`

	PaidAt      *time.Time     `json:"paid_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	FulfilledAt *time.Time     `json:"fulfilled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Payments []Payment   `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments,omitempty"`
}

// OrderItem is an immutable line item snapshot
type OrderItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          uint      `gorm:"not null;index" json:"order_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	ProductVariantID *uint     `gorm:"index" json:"product_variant_id"`
	SKU              string    `gorm:"not null;size:100" json:"sku"`
	Name             string    `gorm:"not null;size:255" json:"name"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	Price            int64     `gorm:"not null" json:"price"`       // Unit price snapshot
	TotalPrice       int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	IsDigital        bool      `gorm:"default:false" json:"is_digital"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Payment represents a payment against an order. The engine only ever
// creates the pending placeholder; the gateway drives it from there.
type Payment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	Reference   string         `gorm:"uniqueIndex;not null;size:64" json:"reference"`
	Method      string         `gorm:"size:50" json:"method"`
	Amount      int64          `gorm:"not null" json:"amount"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	Status      PaymentStatus  `gorm:"not null" json:"status"`
	ProcessedAt *time.Time     `json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
func (Payment) TableName() string   { return "payments" }

// NewOrderNumber generates a unique order number.
// Format: ORD-YYYYMMDD-XXXXXXXX
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// NewPaymentReference generates a unique payment reference
func NewPaymentReference() string {
	return fmt.Sprintf("PAY-%s", uuid.New().String())
}

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusFulfilled},
}

// CanTransitionTo reports whether the status change is legal
func (o *Order) CanTransitionTo(to OrderStatus) bool {
	for _, allowed := range validTransitions[o.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanBeCancelled checks if the order can still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.CanTransitionTo(OrderStatusCancelled)
}
