package models

import "time"

// ProductDetail is the full single-product view fetched on demand from the
// shop. None of it beyond the Product row is persisted by the batch sync.
type ProductDetail struct {
	ID          int64           `json:"id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Vendor      *string         `json:"vendor"`
	ProductType *string         `json:"productType"`
	CreatedAt   *time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
	PublishedAt *time.Time      `json:"publishedAt"`
	Status      *string         `json:"status"`
	Variants    []VariantDetail `json:"variants"`
	Images      []ImageDetail   `json:"images"`
	Tags        []string        `json:"tags"`
	Options     []OptionDetail  `json:"options"`
	FetchedAt   time.Time       `json:"fetchedAt"`
}

// VariantDetail is one variant in a ProductDetail.
type VariantDetail struct {
	ID                int64    `json:"id"`
	Title             *string  `json:"title"`
	Price             *string  `json:"price"`
	CompareAtPrice    *string  `json:"compareAtPrice"`
	SKU               *string  `json:"sku"`
	InventoryQuantity *int     `json:"inventoryQuantity"`
	Weight            *float64 `json:"weight"`
	WeightUnit        *string  `json:"weightUnit"`
}

// ImageDetail is one image in a ProductDetail.
type ImageDetail struct {
	ID       int64   `json:"id"`
	Src      string  `json:"src"`
	Alt      *string `json:"alt"`
	Position int     `json:"position"`
}

// OptionDetail is one option in a ProductDetail.
type OptionDetail struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}
