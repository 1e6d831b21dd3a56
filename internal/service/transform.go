package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// TransformProduct maps a remote product onto a products row. Absent fields
// stay NULL and the variant columns come from the first variant only.
// A zero price is stored as NULL, the same as a missing one.
func TransformProduct(p shopify.Product, syncedAt time.Time) (*models.Product, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("%w: product without id", utils.ErrTransform)
	}

	row := &models.Product{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.BodyHTML,
		Vendor:       p.Vendor,
		ProductType:  p.ProductType,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		PublishedAt:  p.PublishedAt,
		Status:       p.Status,
		LastSyncedAt: syncedAt,
	}

	if len(p.Variants) == 0 {
		return row, nil
	}
	v := p.Variants[0]

	price, err := parsePrice(v.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d: price: %w", utils.ErrTransform, p.ID, err)
	}
	compareAt, err := parsePrice(v.CompareAtPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d: compare_at_price: %w", utils.ErrTransform, p.ID, err)
	}

	row.Price = price
	row.CompareAtPrice = compareAt
	row.SKU = v.SKU
	row.InventoryQuantity = v.InventoryQuantity
	return row, nil
}

func parsePrice(a shopify.Amount) (decimal.NullDecimal, error) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if d.IsZero() {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(d), nil
}

// ProductDetailFromShopify builds the on-demand detail view of one product.
func ProductDetailFromShopify(p *shopify.Product, fetchedAt time.Time) *models.ProductDetail {
	d := &models.ProductDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.PublishedAt,
		Status:      p.Status,
		Variants:    make([]models.VariantDetail, 0, len(p.Variants)),
		Images:      make([]models.ImageDetail, 0, len(p.Images)),
		Tags:        splitTags(p.Tags),
		Options:     make([]models.OptionDetail, 0, len(p.Options)),
		FetchedAt:   fetchedAt,
	}

	for _, v := range p.Variants {
		d.Variants = append(d.Variants, models.VariantDetail{
			ID:                v.ID,
			Title:             v.Title,
			Price:             amountPtr(v.Price),
			CompareAtPrice:    amountPtr(v.CompareAtPrice),
			SKU:               v.SKU,
			InventoryQuantity: v.InventoryQuantity,
			Weight:            v.Weight,
			WeightUnit:        v.WeightUnit,
		})
	}
	for _, img := range p.Images {
		d.Images = append(d.Images, models.ImageDetail{
			ID:       img.ID,
			Src:      img.Src,
			Alt:      img.Alt,
			Position: img.Position,
		})
	}
	for _, o := range p.Options {
		d.Options = append(d.Options, models.OptionDetail{Name: o.Name, Values: o.Values})
	}
	return d
}

// splitTags splits the shop's ", " separated tag string.
func splitTags(tags *string) []string {
	out := []string{}
	if tags == nil {
		return out
	}
	for _, t := range strings.Split(*tags, ", ") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func amountPtr(a shopify.Amount) *string {
	if a == "" {
		return nil
	}
	s := string(a)
	return &s
}
