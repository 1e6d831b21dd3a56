package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// ProductReader is the product service as seen by HTTP.
type ProductReader interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetProductDetail(ctx context.Context, id int64) (*models.ProductDetail, error)
}

// ProductHandler handles product-related HTTP endpoints.
type ProductHandler struct {
	productService ProductReader
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService ProductReader) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProducts returns the synced product list with optional filters and pagination.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Status: c.Query("status"), // active, draft, archived
		Vendor: c.Query("vendor"),
		Search: c.Query("search"),
		Page:   1,
		Limit:  50,
	}

	if filter.Status != "" && !models.ProductStatus(filter.Status).Valid() {
		utils.Error(c, 400, "INVALID_REQUEST", "status must be active, draft or archived")
		return
	}

	// pagination
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n > models.MaxProductPage {
			utils.Error(c, 400, "INVALID_REQUEST", fmt.Sprintf("page must be a number up to %d", models.MaxProductPage))
			return
		}
		if n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= models.MaxProductLimit {
			filter.Limit = n
		}
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved successfully", gin.H{
		"products": products,
	}, filter.Page, filter.Limit, total)
}

// GetProduct returns one synced product.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		log.Error().Err(err).Int64("product_id", id).Msg("Failed to get product")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get product")
		return
	}

	utils.Success(c, 200, "Product retrieved successfully", product)
}

// GetProductDetail returns the full product straight from Shopify.
func (h *ProductHandler) GetProductDetail(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	detail, err := h.productService.GetProductDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		log.Error().Err(err).Int64("product_id", id).Msg("Failed to fetch product detail")
		utils.Error(c, 502, "UPSTREAM_ERROR", "Failed to fetch product from Shopify")
		return
	}

	utils.Success(c, 200, "Product detail retrieved successfully", detail)
}

func parseProductID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return 0, false
	}
	return id, true
}
