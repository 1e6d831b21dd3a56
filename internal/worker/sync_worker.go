package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// SyncRunner runs one catalog sync to completion.
type SyncRunner interface {
	RunNow(ctx context.Context, trigger models.SyncTrigger) (*models.SyncJob, error)
}

// SyncWorker periodically syncs the product catalog from Shopify.
type SyncWorker struct {
	runner   SyncRunner
	interval time.Duration
}

// NewSyncWorker constructs a SyncWorker.
func NewSyncWorker(runner SyncRunner, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		runner:   runner,
		interval: interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *SyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Sync worker stopped")
			return
		}
	}
}

func (w *SyncWorker) run(ctx context.Context) {
	log.Info().Msg("Syncing catalog from Shopify...")

	job, err := w.runner.RunNow(ctx, models.SyncTriggerSchedule)
	if errors.Is(err, utils.ErrSyncInProgress) {
		log.Info().Msg("Sync already in progress, skipping tick")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to sync catalog")
		return
	}

	log.Info().
		Str("job_id", job.ID).
		Int("succeeded", job.SuccessCount).
		Int("failed", job.FailureCount).
		Msg("Catalog sync completed")
}
