package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// SyncJobRepository persists sync job records.
type SyncJobRepository struct {
	db *sqlx.DB
}

// NewSyncJobRepository creates a new SyncJobRepository.
func NewSyncJobRepository(db *sqlx.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

// Create inserts a new job row.
func (r *SyncJobRepository) Create(ctx context.Context, job *models.SyncJob) error {
	const q = `
		INSERT INTO sync_jobs (id, triggered_by, status, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, job.ID, job.Trigger, job.Status, job.CreatedAt)
	return err
}

// Update writes the mutable progress columns of a job.
func (r *SyncJobRepository) Update(ctx context.Context, job *models.SyncJob) error {
	const q = `
		UPDATE sync_jobs SET
			status = $2,
			pages_fetched = $3,
			records_fetched = $4,
			success_count = $5,
			failure_count = $6,
			error = $7,
			started_at = $8,
			finished_at = $9
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		job.ID,
		job.Status,
		job.PagesFetched,
		job.RecordsFetched,
		job.SuccessCount,
		job.FailureCount,
		job.Error,
		job.StartedAt,
		job.FinishedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return utils.ErrJobNotFound
	}
	return nil
}

// GetByID returns one job.
func (r *SyncJobRepository) GetByID(ctx context.Context, id string) (*models.SyncJob, error) {
	const q = `SELECT * FROM sync_jobs WHERE id = $1`

	var job models.SyncJob
	if err := r.db.GetContext(ctx, &job, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListRecent returns the newest jobs first.
func (r *SyncJobRepository) ListRecent(ctx context.Context, limit int) ([]models.SyncJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `SELECT * FROM sync_jobs ORDER BY created_at DESC LIMIT $1`

	jobs := []models.SyncJob{}
	if err := r.db.SelectContext(ctx, &jobs, q, limit); err != nil {
		return nil, err
	}
	return jobs, nil
}

// FailStale marks jobs left pending or running by a crashed process as failed.
// It returns the number of rows changed.
func (r *SyncJobRepository) FailStale(ctx context.Context, reason string) (int64, error) {
	const q = `
		UPDATE sync_jobs SET status = 'failed', error = $1, finished_at = NOW()
		WHERE status IN ('pending', 'running')`
	res, err := r.db.ExecContext(ctx, q, reason)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
