package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/clock"
	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// ProductReader reads synced product rows.
type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
}

// ProductDetailSource fetches a single product from the shop.
type ProductDetailSource interface {
	GetProduct(ctx context.Context, id int64) (*shopify.Product, error)
}

// ProductDetailCache stores detail views. Get returns nil, nil on a miss.
type ProductDetailCache interface {
	Get(ctx context.Context, id int64) (*models.ProductDetail, error)
	Set(ctx context.Context, detail *models.ProductDetail) error
}

// ProductService provides product-related business logic.
type ProductService struct {
	products ProductReader
	source   ProductDetailSource
	cache    ProductDetailCache
	clock    clock.Clock
}

// NewProductService constructs a ProductService. cache may be nil.
func NewProductService(products ProductReader, source ProductDetailSource, cache ProductDetailCache) *ProductService {
	return &ProductService{products: products, source: source, cache: cache, clock: clock.New()}
}

// ListProducts returns synced products with filters and pagination, plus the total.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	return s.products.List(ctx, filter)
}

// GetProduct returns one synced product.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProductDetail returns the full product from the shop, served from cache
// when possible. A product the shop does not know maps to
// utils.ErrProductNotFound; any other shop failure to utils.ErrUpstream.
func (s *ProductService) GetProductDetail(ctx context.Context, id int64) (*models.ProductDetail, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Int64("product_id", id).Msg("Product detail cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := s.source.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, shopify.ErrNotFound) {
			return nil, utils.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %w", utils.ErrUpstream, err)
	}

	detail := ProductDetailFromShopify(p, s.clock.Now())
	if s.cache != nil {
		if err := s.cache.Set(ctx, detail); err != nil {
			log.Warn().Err(err).Int64("product_id", id).Msg("Product detail cache write failed")
		}
	}
	return detail, nil
}
