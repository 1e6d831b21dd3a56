package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

var syncedAt = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func TestTransformProduct_ExampleRecord(t *testing.T) {
	row, err := TransformProduct(sampleShopifyProduct(), syncedAt)
	require.NoError(t, err)

	assert.Equal(t, int64(123456789), row.ID)
	assert.Equal(t, "Test Product", *row.Title)
	assert.Equal(t, "<p>Test Description</p>", *row.Description)
	assert.Equal(t, "Test Vendor", *row.Vendor)
	assert.Equal(t, "Test Type", *row.ProductType)
	assert.Equal(t, "active", *row.Status)
	require.True(t, row.Price.Valid)
	assert.Equal(t, "19.99", row.Price.Decimal.StringFixed(2))
	require.True(t, row.CompareAtPrice.Valid)
	assert.Equal(t, "24.99", row.CompareAtPrice.Decimal.StringFixed(2))
	assert.Equal(t, "TEST-SKU-123", *row.SKU)
	assert.Equal(t, 100, *row.InventoryQuantity)
	assert.Equal(t, syncedAt, row.LastSyncedAt)
}

func TestTransformProduct_NoVariants(t *testing.T) {
	p := sampleShopifyProduct()
	p.Variants = nil

	row, err := TransformProduct(p, syncedAt)
	require.NoError(t, err)
	assert.False(t, row.Price.Valid)
	assert.False(t, row.CompareAtPrice.Valid)
	assert.Nil(t, row.SKU)
	assert.Nil(t, row.InventoryQuantity)
	assert.Equal(t, "Test Product", *row.Title)
}

func TestTransformProduct_SparseRecord(t *testing.T) {
	row, err := TransformProduct(shopify.Product{ID: 5}, syncedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(5), row.ID)
	assert.Nil(t, row.Title)
	assert.Nil(t, row.Description)
	assert.Nil(t, row.CreatedAt)
	assert.Nil(t, row.Status)
}

func TestTransformProduct_ZeroOrMissingPriceIsNull(t *testing.T) {
	for _, price := range []shopify.Amount{"", "0", "0.00", " 0 "} {
		row, err := TransformProduct(productWithID(1, price), syncedAt)
		require.NoError(t, err, "price %q", price)
		assert.False(t, row.Price.Valid, "price %q", price)
	}
}

func TestTransformProduct_KeepsPricePrecision(t *testing.T) {
	for _, price := range []string{"0.001", "0.004", "19.995", "12345678901.00"} {
		row, err := TransformProduct(productWithID(1, shopify.Amount(price)), syncedAt)
		require.NoError(t, err, "price %q", price)
		require.True(t, row.Price.Valid, "price %q", price)
		assert.True(t, row.Price.Decimal.Equal(decimal.RequireFromString(price)), "price %q", price)
	}
}

func TestTransformProduct_OnlyFirstVariantCounts(t *testing.T) {
	p := sampleShopifyProduct()
	p.Variants = append(p.Variants, shopify.Variant{ID: 2, Price: "99.00", SKU: strPtr("OTHER")})

	row, err := TransformProduct(p, syncedAt)
	require.NoError(t, err)
	assert.Equal(t, "19.99", row.Price.Decimal.StringFixed(2))
	assert.Equal(t, "TEST-SKU-123", *row.SKU)
}

func TestTransformProduct_InvalidPrice(t *testing.T) {
	_, err := TransformProduct(productWithID(9, "abc"), syncedAt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrTransform))

	p := productWithID(9, "10.00")
	p.Variants[0].CompareAtPrice = "n/a"
	_, err = TransformProduct(p, syncedAt)
	assert.True(t, errors.Is(err, utils.ErrTransform))
}

func TestTransformProduct_MissingID(t *testing.T) {
	_, err := TransformProduct(shopify.Product{Title: strPtr("orphan")}, syncedAt)
	assert.True(t, errors.Is(err, utils.ErrTransform))
}

func TestProductDetailFromShopify(t *testing.T) {
	p := sampleShopifyProduct()
	p.Variants[0].Weight = new(float64)
	*p.Variants[0].Weight = 0.5
	p.Variants[0].WeightUnit = strPtr("kg")
	p.Images = []shopify.Image{{ID: 1, Src: "https://cdn.example.com/a.png", Position: 1}}
	p.Options = []shopify.Option{{Name: "Size", Values: []string{"S", "M"}}}

	d := ProductDetailFromShopify(&p, syncedAt)

	assert.Equal(t, []string{"summer", "sale"}, d.Tags)
	require.Len(t, d.Variants, 1)
	assert.Equal(t, "19.99", *d.Variants[0].Price)
	assert.Equal(t, 0.5, *d.Variants[0].Weight)
	assert.Equal(t, "kg", *d.Variants[0].WeightUnit)
	require.Len(t, d.Images, 1)
	assert.Equal(t, "https://cdn.example.com/a.png", d.Images[0].Src)
	assert.Equal(t, "Size", d.Options[0].Name)
	assert.Equal(t, syncedAt, d.FetchedAt)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{}, splitTags(nil))
	assert.Equal(t, []string{}, splitTags(strPtr("")))
	assert.Equal(t, []string{"a", "b c"}, splitTags(strPtr("a, b c")))
}
