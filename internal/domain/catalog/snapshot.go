// internal/domain/catalog/snapshot.go
package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Snapshot holds authoritative product and variant state read at the instant
// of checkout. Prices and stock in the snapshot are the financial record the
// rest of the checkout works from; client-supplied values are never trusted.
type Snapshot struct {
	Products map[uint]*Product
	Variants map[uint]*ProductVariant
}

// SnapshotReader loads catalog snapshots from the storage layer
type SnapshotReader struct {
	db *gorm.DB
}

// NewSnapshotReader creates a new snapshot reader
func NewSnapshotReader(db *gorm.DB) *SnapshotReader {
	return &SnapshotReader{db: db}
}

// Load fetches the requested products and variants in two queries.
// Missing IDs are simply absent from the maps; the caller decides how to
// treat stale references.
func (r *SnapshotReader) Load(ctx context.Context, productIDs, variantIDs []uint) (*Snapshot, error) {
	snapshot := &Snapshot{
		Products: make(map[uint]*Product, len(productIDs)),
		Variants: make(map[uint]*ProductVariant, len(variantIDs)),
	}

	if len(productIDs) > 0 {
		var products []Product
		if err := r.db.WithContext(ctx).
			Where("id IN ?", productIDs).
			Find(&products).Error; err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		for i := range products {
			snapshot.Products[products[i].ID] = &products[i]
		}
	}

	if len(variantIDs) > 0 {
		var variants []ProductVariant
		if err := r.db.WithContext(ctx).
			Where("id IN ?", variantIDs).
			Find(&variants).Error; err != nil {
			return nil, fmt.Errorf("failed to load variants: %w", err)
		}
		for i := range variants {
			snapshot.Variants[variants[i].ID] = &variants[i]
		}
	}

	return snapshot, nil
}

// GetProduct retrieves a single active product with its variants
func (r *SnapshotReader) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	result := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// ListActiveProducts retrieves active products for storefront browsing
func (r *SnapshotReader) ListActiveProducts(ctx context.Context, categoryID *uint, page, limit int) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{}).Where("is_active = ?", true)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Variants").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return products, total, nil
}
