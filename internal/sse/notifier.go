package sse

import (
	"time"

	"github.com/GTDGit/catalog_sync/internal/models"
)

// SyncNotifier is the interface services use to emit sync job events.
type SyncNotifier interface {
	NotifySyncJob(eventType EventType, job *models.SyncJob)
}

// HubNotifier implements SyncNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifySyncJob(eventType EventType, job *models.SyncJob) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(jobToEvent(eventType, job))
}

func jobToEvent(eventType EventType, job *models.SyncJob) *SyncEvent {
	return &SyncEvent{
		Event:          eventType,
		JobID:          job.ID,
		Trigger:        string(job.Trigger),
		Status:         string(job.Status),
		PagesFetched:   job.PagesFetched,
		RecordsFetched: job.RecordsFetched,
		SuccessCount:   job.SuccessCount,
		FailureCount:   job.FailureCount,
		Error:          job.Error,
		Timestamp:      time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifySyncJob(eventType EventType, job *models.SyncJob) {}
