// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-engine/internal/domain/catalog"
	"github.com/your-org/storefront-engine/internal/domain/coupon"
	"github.com/your-org/storefront-engine/internal/domain/delivery"
	"github.com/your-org/storefront-engine/internal/domain/gating"
	"github.com/your-org/storefront-engine/internal/domain/order"
	"github.com/your-org/storefront-engine/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&catalog.Category{},
		&catalog.Product{},
		&catalog.ProductVariant{},

		&coupon.Coupon{},
		&coupon.CouponProduct{},
		&coupon.CouponCategory{},

		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},

		&coupon.CouponRedemption{},

		&gating.Rule{},

		&delivery.DigitalAsset{},
		&delivery.Entitlement{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product ON product_variants(product_id)",

		// Coupons: case-insensitive code lookups
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code_lower ON coupons(LOWER(code))",
		"CREATE INDEX IF NOT EXISTS idx_coupon_redemptions_coupon_user ON coupon_redemptions(coupon_id, user_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupon_redemptions_order ON coupon_redemptions(coupon_id, order_id)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",

		// Gating rules: one rule per target
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_gating_rules_product ON gating_rules(product_id) WHERE product_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_gating_rules_category ON gating_rules(category_id) WHERE category_id IS NOT NULL",

		// Delivery
		"CREATE INDEX IF NOT EXISTS idx_entitlements_user ON entitlements(user_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_entitlements_user_asset ON entitlements(user_id, digital_asset_id)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}
