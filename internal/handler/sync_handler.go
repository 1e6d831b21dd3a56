package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// SyncStarter accepts sync requests.
type SyncStarter interface {
	Start(ctx context.Context, trigger models.SyncTrigger) (*models.SyncJob, error)
	CurrentJobID() string
}

// JobReader reads sync job records.
type JobReader interface {
	GetByID(ctx context.Context, id string) (*models.SyncJob, error)
	ListRecent(ctx context.Context, limit int) ([]models.SyncJob, error)
}

// SyncHandler exposes the catalog sync trigger and job status.
type SyncHandler struct {
	trigger SyncStarter
	jobs    JobReader
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(trigger SyncStarter, jobs JobReader) *SyncHandler {
	return &SyncHandler{trigger: trigger, jobs: jobs}
}

// TriggerSync handles POST /v1/sync. The sync runs in the background; the
// response only acknowledges that it started.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	startSync(c, h.trigger, models.SyncTriggerAPI)
}

func startSync(c *gin.Context, trigger SyncStarter, source models.SyncTrigger) {
	job, err := trigger.Start(c.Request.Context(), source)
	if err != nil {
		if errors.Is(err, utils.ErrSyncInProgress) {
			utils.ErrorWithData(c, 409, "SYNC_IN_PROGRESS", "A catalog sync is already running", gin.H{
				"jobId": trigger.CurrentJobID(),
			})
			return
		}
		log.Error().Err(err).Str("trigger", string(source)).Msg("Failed to start catalog sync")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to start sync")
		return
	}

	utils.Success(c, 202, "Sync started", gin.H{
		"status": "started",
		"jobId":  job.ID,
	})
}

// ListJobs handles GET /v1/sync/jobs.
func (h *SyncHandler) ListJobs(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	jobs, err := h.jobs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sync jobs")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list sync jobs")
		return
	}

	utils.Success(c, 200, "Sync jobs retrieved successfully", gin.H{
		"jobs": jobs,
	})
}

// GetJob handles GET /v1/sync/jobs/:id. Unfinished jobs carry a Retry-After
// hint for pollers.
func (h *SyncHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, utils.ErrJobNotFound) {
			utils.Error(c, 404, "JOB_NOT_FOUND", "Sync job not found")
			return
		}
		log.Error().Err(err).Str("job_id", c.Param("id")).Msg("Failed to get sync job")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get sync job")
		return
	}

	if !job.Status.Finished() {
		c.Header("Retry-After", "5")
	}
	utils.Success(c, 200, "Sync job retrieved successfully", job)
}
