package models

import "time"

// SyncStatus is the lifecycle state of a sync job.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// Finished reports whether the job reached a terminal state.
func (s SyncStatus) Finished() bool {
	return s == SyncStatusSucceeded || s == SyncStatusFailed
}

// SyncTrigger records what started a sync job.
type SyncTrigger string

const (
	SyncTriggerAPI      SyncTrigger = "api"
	SyncTriggerSchedule SyncTrigger = "schedule"
	SyncTriggerCLI      SyncTrigger = "cli"
	SyncTriggerWebhook  SyncTrigger = "webhook"
)

// SyncJob is the durable record of one sync invocation.
type SyncJob struct {
	ID             string      `db:"id" json:"id"`
	Trigger        SyncTrigger `db:"triggered_by" json:"trigger"`
	Status         SyncStatus  `db:"status" json:"status"`
	PagesFetched   int         `db:"pages_fetched" json:"pagesFetched"`
	RecordsFetched int         `db:"records_fetched" json:"recordsFetched"`
	SuccessCount   int         `db:"success_count" json:"successCount"`
	FailureCount   int         `db:"failure_count" json:"failureCount"`
	Error          *string     `db:"error" json:"error,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	StartedAt      *time.Time  `db:"started_at" json:"startedAt,omitempty"`
	FinishedAt     *time.Time  `db:"finished_at" json:"finishedAt,omitempty"`
}
