package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the lifecycle status reported by the shop.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Valid reports whether s is a status the shop can report.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDraft, ProductStatusArchived:
		return true
	}
	return false
}

// Product is one persisted catalog row, keyed by the remote product id.
// Variant-derived columns come from the first variant only.
type Product struct {
	ID                int64               `db:"id" json:"id"`
	Title             *string             `db:"title" json:"title"`
	Description       *string             `db:"description" json:"description"`
	Vendor            *string             `db:"vendor" json:"vendor"`
	ProductType       *string             `db:"product_type" json:"productType"`
	CreatedAt         *time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt         *time.Time          `db:"updated_at" json:"updatedAt"`
	PublishedAt       *time.Time          `db:"published_at" json:"publishedAt"`
	Status            *string             `db:"status" json:"status"`
	Price             decimal.NullDecimal `db:"price" json:"price"`
	CompareAtPrice    decimal.NullDecimal `db:"compare_at_price" json:"compareAtPrice"`
	SKU               *string             `db:"sku" json:"sku"`
	InventoryQuantity *int                `db:"inventory_quantity" json:"inventoryQuantity"`
	LastSyncedAt      time.Time           `db:"last_synced_at" json:"lastSyncedAt"`
}

// Listing bounds for ProductFilter.
const (
	MaxProductPage  = 10000
	MaxProductLimit = 250
)

// ProductFilter narrows a product listing. Empty fields are ignored.
type ProductFilter struct {
	Status string
	Vendor string
	Search string
	Page   int
	Limit  int
}
