package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/clock"
	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/metrics"
	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/sse"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

// JobStore persists sync job records.
type JobStore interface {
	Create(ctx context.Context, job *models.SyncJob) error
	Update(ctx context.Context, job *models.SyncJob) error
}

// SyncDeps wires a SyncService.
type SyncDeps struct {
	Credentials  config.ShopifyConfig
	Catalog      Catalog
	Fetcher      *Fetcher
	Upserter     *Upserter
	Jobs         JobStore
	Notifier     sse.SyncNotifier
	Clock        clock.Clock
	FetchTimeout time.Duration
}

// SyncService runs the catalog sync: open a session, fetch every page, upsert
// the batch, and record the outcome on the job row.
type SyncService struct {
	credentials  config.ShopifyConfig
	catalog      Catalog
	fetcher      *Fetcher
	upserter     *Upserter
	jobs         JobStore
	notifier     sse.SyncNotifier
	clock        clock.Clock
	fetchTimeout time.Duration
}

// NewSyncService constructs a SyncService.
func NewSyncService(d SyncDeps) *SyncService {
	if d.Notifier == nil {
		d.Notifier = &sse.NopNotifier{}
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	return &SyncService{
		credentials:  d.Credentials,
		catalog:      d.Catalog,
		fetcher:      d.Fetcher,
		upserter:     d.Upserter,
		jobs:         d.Jobs,
		notifier:     d.Notifier,
		clock:        d.Clock,
		fetchTimeout: d.FetchTimeout,
	}
}

// NewJob records a pending job for trigger.
func (s *SyncService) NewJob(ctx context.Context, trigger models.SyncTrigger) (*models.SyncJob, error) {
	job := &models.SyncJob{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    models.SyncStatusPending,
		CreatedAt: s.clock.Now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}
	return job, nil
}

// Run executes job. Configuration, authentication, fetch and commit errors
// fail the job and are returned. Record-level failures only show up in the
// job's counts.
func (s *SyncService) Run(ctx context.Context, job *models.SyncJob) error {
	started := s.clock.Now()
	job.Status = models.SyncStatusRunning
	job.StartedAt = &started
	s.saveJob(ctx, job, sse.EventSyncStarted)

	log.Info().Str("job_id", job.ID).Str("trigger", string(job.Trigger)).Msg("Catalog sync started")

	err := s.execute(ctx, job)
	if err != nil && ctx.Err() != nil {
		if cause := context.Cause(ctx); !errors.Is(err, cause) {
			err = fmt.Errorf("%w: %w", err, cause)
		}
	}

	finished := s.clock.Now()
	job.FinishedAt = &finished
	if err != nil {
		msg := err.Error()
		job.Status = models.SyncStatusFailed
		job.Error = &msg
		log.Error().Err(err).
			Str("job_id", job.ID).
			Int("succeeded", job.SuccessCount).
			Int("failed", job.FailureCount).
			Msg("Catalog sync failed")
	} else {
		job.Status = models.SyncStatusSucceeded
		log.Info().
			Str("job_id", job.ID).
			Int("pages", job.PagesFetched).
			Int("records", job.RecordsFetched).
			Int("succeeded", job.SuccessCount).
			Int("failed", job.FailureCount).
			Dur("duration", finished.Sub(started)).
			Msg("Catalog sync finished")
	}

	// the outcome is recorded even when ctx was cancelled mid-run
	s.saveJob(context.WithoutCancel(ctx), job, sse.EventSyncFinished)

	metrics.RecordSync(metrics.SyncRun{
		Trigger:   string(job.Trigger),
		Status:    string(job.Status),
		Requests:  job.PagesFetched,
		Succeeded: job.SuccessCount,
		Failed:    job.FailureCount,
		Duration:  finished.Sub(started),
		Finished:  finished,
	})
	return err
}

func (s *SyncService) execute(ctx context.Context, job *models.SyncJob) error {
	if err := s.credentials.Validate(); err != nil {
		return err
	}

	source, err := s.catalog.OpenSession(ctx)
	if err != nil {
		if errors.Is(err, shopify.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", utils.ErrAuthentication, err)
		}
		return fmt.Errorf("%w: open session: %w", utils.ErrFetch, err)
	}

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	fetched, err := s.fetcher.FetchAll(fetchCtx, source)
	if err != nil {
		return err
	}
	job.PagesFetched = fetched.Requests
	job.RecordsFetched = len(fetched.Products)
	s.saveJob(ctx, job, sse.EventSyncProgress)

	result, err := s.upserter.UpsertAll(ctx, fetched.Products)
	job.SuccessCount = result.Succeeded
	job.FailureCount = result.Failed
	return err
}

func (s *SyncService) saveJob(ctx context.Context, job *models.SyncJob, event sse.EventType) {
	if err := s.jobs.Update(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("status", string(job.Status)).Msg("Failed to update sync job")
	}
	s.notifier.NotifySyncJob(event, job)
}
