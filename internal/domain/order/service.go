// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-engine/internal/domain/catalog"
	"gorm.io/gorm"
)

// Service handles order queries and lifecycle transitions after creation.
// Order creation itself is the checkout package's reservation transaction.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{
		db:  db,
		log: log,
	}
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ListResult represents an order listing with pagination
type ListResult struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// GetOrder retrieves a single order owned by the user
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	var o Order
	result := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &o, nil
}

// GetUserOrders retrieves a user's orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, userID uint, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var orders []Order
	var total int64

	query := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResult{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateStatus moves an order along the state machine. Transitions out of
// pending are driven by payment-provider callbacks; this only guards the
// legality of the transition.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error {
	var o Order
	if err := s.db.WithContext(ctx).First(&o, orderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if !o.CanTransitionTo(status) {
		return fmt.Errorf("invalid status transition from %s to %s", o.Status, status)
	}

	from := o.Status
	updates := map[string]interface{}{
		"status": status,
	}

	now := time.Now().UTC()
	switch status {
	case OrderStatusPaid:
		updates["paid_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusFulfilled:
		updates["fulfilled_at"] = now
	}

	if err := s.db.WithContext(ctx).Model(&o).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       status,
	}).Info("Order status updated")

	return nil
}

// CancelOrder cancels an order and restores reserved stock in one
// transaction.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID uint) error {
	var o Order
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if !o.CanBeCancelled() {
		return fmt.Errorf("order cannot be cancelled in current status: %s", o.Status)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var items []OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to get order items: %w", err)
	}

	for _, item := range items {
		if item.ProductVariantID == nil {
			continue
		}
		if err := tx.Model(&catalog.ProductVariant{}).
			Where("id = ?", *item.ProductVariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err := tx.Model(&o).Update("status", OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  userID,
	}).Info("Order cancelled, stock restored")

	return nil
}
