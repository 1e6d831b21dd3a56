package shopify

import (
	"context"
	"net/url"
	"strconv"
)

// Session is an authenticated handle on one shop. It is created by
// Client.OpenSession and passed explicitly to whatever reads the catalog.
type Session struct {
	client *Client
	Shop   Shop
}

// ListProducts returns one page of products. An empty slice marks the end of
// the catalog.
func (s *Session) ListProducts(ctx context.Context, page, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))

	var resp productsResponse
	if err := s.client.doRequest(ctx, "/products.json", q, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
