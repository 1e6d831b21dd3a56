package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// Fetcher walks the catalog page by page until the first empty page.
type Fetcher struct {
	pageSize int
	maxPages int
}

// NewFetcher creates a Fetcher. pageSize is clamped to config.MaxPageSize;
// maxPages of 0 removes the page ceiling.
func NewFetcher(pageSize, maxPages int) *Fetcher {
	if pageSize <= 0 || pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}
	if maxPages < 0 {
		maxPages = 0
	}
	return &Fetcher{pageSize: pageSize, maxPages: maxPages}
}

// FetchResult is the concatenated catalog plus the number of requests made.
type FetchResult struct {
	Products []shopify.Product
	Requests int
}

// FetchAll requests page 1, 2, ... and appends each page in order. Any error
// aborts the walk and discards what was collected; nothing is retried.
func (f *Fetcher) FetchAll(ctx context.Context, src PageSource) (*FetchResult, error) {
	var products []shopify.Product
	requests := 0

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", utils.ErrFetch, page, err)
		}

		batch, err := src.ListProducts(ctx, page, f.pageSize)
		requests++
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", utils.ErrFetch, page, err)
		}
		if len(batch) == 0 {
			break
		}
		if f.maxPages > 0 && page > f.maxPages {
			return nil, fmt.Errorf("%w: %w: more than %d pages", utils.ErrFetch, utils.ErrPageLimitExceeded, f.maxPages)
		}

		products = append(products, batch...)
		log.Debug().Int("page", page).Int("count", len(batch)).Msg("Fetched product page")
	}

	return &FetchResult{Products: products, Requests: requests}, nil
}
