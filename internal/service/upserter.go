package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/clock"
	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/repository"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// ProductBatch collects upserts in one transaction. A failed Upsert leaves
// the batch usable.
type ProductBatch interface {
	Upsert(ctx context.Context, p *models.Product) error
	Commit() error
	Rollback() error
}

// ProductStore opens write batches.
type ProductStore interface {
	BeginBatch(ctx context.Context) (ProductBatch, error)
}

type repoStore struct {
	repo *repository.ProductRepository
}

// NewProductStore exposes a ProductRepository as a ProductStore.
func NewProductStore(repo *repository.ProductRepository) ProductStore {
	return repoStore{repo: repo}
}

func (s repoStore) BeginBatch(ctx context.Context) (ProductBatch, error) {
	batch, err := s.repo.BeginBatch(ctx)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// UpsertResult counts the outcome of one batch.
type UpsertResult struct {
	Succeeded int
	Failed    int
}

// Upserter transforms fetched products and writes them in one batch.
type Upserter struct {
	store     ProductStore
	clock     clock.Clock
	stampMode config.StampMode
}

// NewUpserter creates an Upserter.
func NewUpserter(store ProductStore, clk clock.Clock, stampMode config.StampMode) *Upserter {
	if clk == nil {
		clk = clock.New()
	}
	if stampMode == "" {
		stampMode = config.StampPerRecord
	}
	return &Upserter{store: store, clock: clk, stampMode: stampMode}
}

// UpsertAll writes every product. A record that fails to transform or write is
// logged and counted, then skipped. The batch commits once at the end; a
// failed commit rolls everything back and returns utils.ErrCommit.
func (u *Upserter) UpsertAll(ctx context.Context, products []shopify.Product) (UpsertResult, error) {
	var result UpsertResult

	batch, err := u.store.BeginBatch(ctx)
	if err != nil {
		return result, err
	}

	batchStamp := u.clock.Now()
	for _, raw := range products {
		if err := ctx.Err(); err != nil {
			_ = batch.Rollback()
			return result, err
		}

		stamp := batchStamp
		if u.stampMode == config.StampPerRecord {
			stamp = u.clock.Now()
		}

		row, err := TransformProduct(raw, stamp)
		if err != nil {
			result.Failed++
			log.Warn().Err(err).Int64("product_id", raw.ID).Msg("Skipping product: transform failed")
			continue
		}

		if err := batch.Upsert(ctx, row); err != nil {
			result.Failed++
			log.Warn().Err(err).Int64("product_id", raw.ID).Msg("Skipping product: upsert failed")
			continue
		}
		result.Succeeded++
	}

	if err := batch.Commit(); err != nil {
		if rbErr := batch.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Rollback after failed commit")
		}
		return result, fmt.Errorf("%w: %w", utils.ErrCommit, err)
	}
	return result, nil
}
