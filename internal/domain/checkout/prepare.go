// internal/domain/checkout/prepare.go
package checkout

import (
	"github.com/your-org/storefront-engine/internal/domain/catalog"
)

// LineItemRequest is a caller-supplied (product, variant, quantity) tuple.
// It is ephemeral and untrusted; prices always come from the catalog snapshot.
type LineItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id,omitempty"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// PreparedLineItem is an immutable priced line item. Once produced it forms
// the basis of the order's financial record.
type PreparedLineItem struct {
	ProductID  uint   `json:"product_id"`
	VariantID  *uint  `json:"variant_id,omitempty"`
	CategoryID uint   `json:"category_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"` // Snapshot in minor currency units
	IsDigital  bool   `json:"is_digital"`
}

// LineTotal returns unit price times quantity
func (i *PreparedLineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// PrepareResult is the output of PrepareOrderItems
type PrepareResult struct {
	Items    []PreparedLineItem
	Subtotal int64
	// DroppedProductIDs names stale cart entries (missing or inactive
	// products) that were silently excluded, so the caller can reconcile
	// its cart. The order itself is unaffected by drops.
	DroppedProductIDs []uint
}

// PrepareOrderItems reconciles requested line items against the catalog
// snapshot. Pure function: identical inputs always yield identical output,
// and nothing is mutated.
//
// Missing or inactive products are dropped rather than aborting the whole
// checkout: a stale cart referencing a deleted product must not block the
// remaining items. A variant that does not belong to its requested product
// is dropped the same way. Insufficient stock fails the entire operation
// instead, naming the offending variant.
func PrepareOrderItems(requests []LineItemRequest, products map[uint]*catalog.Product, variants map[uint]*catalog.ProductVariant) (*PrepareResult, error) {
	result := &PrepareResult{
		Items: make([]PreparedLineItem, 0, len(requests)),
	}

	for _, req := range requests {
		quantity := req.Quantity
		if quantity < 1 {
			quantity = 1
		}

		product, ok := products[req.ProductID]
		if !ok || !product.IsActive {
			result.DroppedProductIDs = append(result.DroppedProductIDs, req.ProductID)
			continue
		}

		var variant *catalog.ProductVariant
		if req.VariantID != nil {
			variant, ok = variants[*req.VariantID]
			if !ok || variant.ProductID != product.ID {
				result.DroppedProductIDs = append(result.DroppedProductIDs, req.ProductID)
				continue
			}

			if variant.Stock < quantity {
				return nil, NewStockError(variant.ID, quantity, variant.Stock)
			}
		}

		item := PreparedLineItem{
			ProductID:  product.ID,
			VariantID:  req.VariantID,
			CategoryID: product.CategoryID,
			SKU:        product.SKU,
			Name:       product.Name,
			Quantity:   quantity,
			UnitPrice:  variant.UnitPrice(product),
			IsDigital:  product.IsDigital,
		}
		if variant != nil {
			item.SKU = variant.SKU
		}

		result.Items = append(result.Items, item)
		result.Subtotal += item.LineTotal()
	}

	if len(result.Items) == 0 {
		return nil, NewNoItemsError()
	}

	return result, nil
}
