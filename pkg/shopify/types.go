package shopify

import (
	"encoding/json"
	"strings"
	"time"
)

// Product is a product resource as returned by the Admin REST API.
// Optional fields are pointers so absence survives decoding.
type Product struct {
	ID          int64      `json:"id"`
	Title       *string    `json:"title,omitempty"`
	BodyHTML    *string    `json:"body_html,omitempty"`
	Vendor      *string    `json:"vendor,omitempty"`
	ProductType *string    `json:"product_type,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Tags        *string    `json:"tags,omitempty"` // comma separated
	Variants    []Variant  `json:"variants,omitempty"`
	Images      []Image    `json:"images,omitempty"`
	Options     []Option   `json:"options,omitempty"`
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID                int64    `json:"id"`
	Title             *string  `json:"title,omitempty"`
	Price             Amount   `json:"price"`
	CompareAtPrice    Amount   `json:"compare_at_price"`
	SKU               *string  `json:"sku,omitempty"`
	InventoryQuantity *int     `json:"inventory_quantity,omitempty"`
	Weight            *float64 `json:"weight,omitempty"`
	WeightUnit        *string  `json:"weight_unit,omitempty"`
}

// Image is a product image.
type Image struct {
	ID       int64   `json:"id"`
	Src      string  `json:"src"`
	Alt      *string `json:"alt,omitempty"`
	Position int     `json:"position"`
}

// Option is a product option such as Size or Color.
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Shop is the subset of the shop resource used to confirm a session.
type Shop struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Amount holds a monetary value exactly as the API sent it. Prices arrive as
// JSON strings ("19.99") on the REST API but may be numbers or null in older
// payloads; all three decode here. An empty Amount means absent or null.
type Amount string

// UnmarshalJSON accepts a JSON string, number, or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(raw)
	return nil
}

// MarshalJSON writes the raw text as a JSON string, or null when empty.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

type productsResponse struct {
	Products []Product `json:"products"`
}

type productResponse struct {
	Product Product `json:"product"`
}

type shopResponse struct {
	Shop Shop `json:"shop"`
}

type errorResponse struct {
	Errors json.RawMessage `json:"errors"`
}
