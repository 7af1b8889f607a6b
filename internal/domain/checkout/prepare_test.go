// internal/domain/checkout/prepare_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-engine/internal/domain/catalog"
)

func testProducts() map[uint]*catalog.Product {
	return map[uint]*catalog.Product{
		1: {ID: 1, SKU: "TSHIRT", Name: "T-Shirt", Price: 2500, CategoryID: 10, IsActive: true},
		2: {ID: 2, SKU: "EBOOK", Name: "E-Book", Price: 900, CategoryID: 20, IsActive: true, IsDigital: true},
		3: {ID: 3, SKU: "RETIRED", Name: "Retired", Price: 100, CategoryID: 10, IsActive: false},
	}
}

func testVariants() map[uint]*catalog.ProductVariant {
	override := int64(2700)
	return map[uint]*catalog.ProductVariant{
		11: {ID: 11, ProductID: 1, SKU: "TSHIRT-L", Name: "Large", Stock: 5},
		12: {ID: 12, ProductID: 1, SKU: "TSHIRT-XL", Name: "XL", Price: &override, Stock: 2},
	}
}

func TestPrepareOrderItemsPricesFromCatalog(t *testing.T) {
	variantID := uint(12)
	result, err := PrepareOrderItems([]LineItemRequest{
		{ProductID: 1, VariantID: &variantID, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}, testProducts(), testVariants())

	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	// Variant price override wins over the product base price
	assert.Equal(t, int64(2700), result.Items[0].UnitPrice)
	assert.Equal(t, "TSHIRT-XL", result.Items[0].SKU)
	assert.Equal(t, int64(5400), result.Items[0].LineTotal())

	assert.Equal(t, int64(900), result.Items[1].UnitPrice)
	assert.True(t, result.Items[1].IsDigital)
	assert.Equal(t, int64(5400+2700), result.Subtotal)
	assert.Empty(t, result.DroppedProductIDs)
}

func TestPrepareOrderItemsClampsQuantity(t *testing.T) {
	result, err := PrepareOrderItems([]LineItemRequest{
		{ProductID: 2, Quantity: 0},
		{ProductID: 2, Quantity: -7},
	}, testProducts(), testVariants())

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 1, result.Items[0].Quantity)
	assert.Equal(t, 1, result.Items[1].Quantity)
	assert.Equal(t, int64(1800), result.Subtotal)
}

func TestPrepareOrderItemsDropsStaleEntries(t *testing.T) {
	wrongProduct := uint(11) // belongs to product 1, requested against product 2
	result, err := PrepareOrderItems([]LineItemRequest{
		{ProductID: 99, Quantity: 1},                         // unknown product
		{ProductID: 3, Quantity: 1},                          // inactive product
		{ProductID: 2, VariantID: &wrongProduct, Quantity: 1}, // variant mismatch
		{ProductID: 1, Quantity: 1},                          // survives
	}, testProducts(), testVariants())

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, uint(1), result.Items[0].ProductID)
	assert.Equal(t, []uint{99, 3, 2}, result.DroppedProductIDs)
}

func TestPrepareOrderItemsInsufficientStockFailsWholeOrder(t *testing.T) {
	variantID := uint(12)
	_, err := PrepareOrderItems([]LineItemRequest{
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, VariantID: &variantID, Quantity: 3}, // only 2 in stock
	}, testProducts(), testVariants())

	require.Error(t, err)
	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, ErrCodeStock, checkoutErr.Code)
	assert.Equal(t, uint(12), checkoutErr.VariantID)
}

func TestPrepareOrderItemsEmptyOrderFails(t *testing.T) {
	for name, requests := range map[string][]LineItemRequest{
		"no requests":       {},
		"everything dropped": {{ProductID: 99, Quantity: 1}, {ProductID: 3, Quantity: 2}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := PrepareOrderItems(requests, testProducts(), testVariants())
			var checkoutErr *CheckoutError
			require.ErrorAs(t, err, &checkoutErr)
			assert.Equal(t, ErrCodeNoItems, checkoutErr.Code)
		})
	}
}

func TestPrepareOrderItemsIsIdempotent(t *testing.T) {
	requests := []LineItemRequest{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}
	products, variants := testProducts(), testVariants()

	first, err := PrepareOrderItems(requests, products, variants)
	require.NoError(t, err)
	second, err := PrepareOrderItems(requests, products, variants)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
