package service

import (
	"context"

	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// PageSource returns one page of products from an authenticated session.
// An empty slice marks the end of the catalog.
type PageSource interface {
	ListProducts(ctx context.Context, page, limit int) ([]shopify.Product, error)
}

// Catalog opens sessions against the remote shop.
type Catalog interface {
	OpenSession(ctx context.Context) (PageSource, error)
}

// ShopifyCatalog adapts *shopify.Client to Catalog.
type ShopifyCatalog struct {
	client *shopify.Client
}

// NewShopifyCatalog wraps a Shopify client.
func NewShopifyCatalog(client *shopify.Client) *ShopifyCatalog {
	return &ShopifyCatalog{client: client}
}

func (c *ShopifyCatalog) OpenSession(ctx context.Context) (PageSource, error) {
	session, err := c.client.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	return session, nil
}
