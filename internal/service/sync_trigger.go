package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// SyncLock serializes syncs across processes. A held lock expires after TTL
// unless the holder extends it.
type SyncLock interface {
	Acquire(ctx context.Context, owner string) (bool, error)
	Extend(ctx context.Context, owner string) (bool, error)
	Release(ctx context.Context, owner string) error
	TTL() time.Duration
}

// StaleJobReaper fails jobs left unfinished by a previous process.
type StaleJobReaper interface {
	FailStale(ctx context.Context, reason string) (int64, error)
}

// SyncTrigger admits at most one sync at a time and runs accepted jobs.
type SyncTrigger struct {
	svc     *SyncService
	lock    SyncLock
	baseCtx context.Context

	running atomic.Bool
	mu      sync.Mutex
	current string
	wg      sync.WaitGroup
}

// NewSyncTrigger creates a SyncTrigger. Background runs derive from baseCtx,
// so cancelling it stops them. lock may be nil for a single instance.
func NewSyncTrigger(baseCtx context.Context, svc *SyncService, lock SyncLock) *SyncTrigger {
	return &SyncTrigger{svc: svc, lock: lock, baseCtx: baseCtx}
}

// Start records a pending job and runs it on a new goroutine. It returns
// utils.ErrSyncInProgress while another sync holds the guard.
func (t *SyncTrigger) Start(ctx context.Context, trigger models.SyncTrigger) (*models.SyncJob, error) {
	owner, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}

	job, err := t.svc.NewJob(ctx, trigger)
	if err != nil {
		t.release(owner)
		return nil, err
	}
	t.setCurrent(job.ID)
	snapshot := *job

	runCtx, stop := t.hold(t.baseCtx, owner)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.release(owner)
		defer stop()
		_ = t.svc.Run(runCtx, job)
	}()

	return &snapshot, nil
}

// RunNow runs a sync on the calling goroutine under the same guard as Start.
func (t *SyncTrigger) RunNow(ctx context.Context, trigger models.SyncTrigger) (*models.SyncJob, error) {
	owner, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.release(owner)

	job, err := t.svc.NewJob(ctx, trigger)
	if err != nil {
		return nil, err
	}
	t.setCurrent(job.ID)

	runCtx, stop := t.hold(ctx, owner)
	defer stop()
	return job, t.svc.Run(runCtx, job)
}

// RecoverInterrupted fails jobs a crashed process left pending or running.
// It is skipped when a sync is already running somewhere.
func (t *SyncTrigger) RecoverInterrupted(ctx context.Context, reaper StaleJobReaper) error {
	owner, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer t.release(owner)

	n, err := reaper.FailStale(ctx, "interrupted before completion")
	if err != nil {
		return err
	}
	if n > 0 {
		log.Warn().Int64("jobs", n).Msg("Marked interrupted sync jobs as failed")
	}
	return nil
}

// Running reports whether this process is running a sync.
func (t *SyncTrigger) Running() bool {
	return t.running.Load()
}

// CurrentJobID returns the id of the running job, or "".
func (t *SyncTrigger) CurrentJobID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Wait blocks until background runs have returned.
func (t *SyncTrigger) Wait() {
	t.wg.Wait()
}

func (t *SyncTrigger) acquire(ctx context.Context) (string, error) {
	if !t.running.CompareAndSwap(false, true) {
		return "", utils.ErrSyncInProgress
	}

	owner := uuid.NewString()
	if t.lock != nil {
		ok, err := t.lock.Acquire(ctx, owner)
		if err != nil {
			t.running.Store(false)
			return "", fmt.Errorf("acquire sync lock: %w", err)
		}
		if !ok {
			t.running.Store(false)
			return "", utils.ErrSyncInProgress
		}
	}
	return owner, nil
}

// hold keeps owner's lock alive until the returned stop func is called. If
// the lock is lost the returned context is cancelled with utils.ErrSyncLockLost
// so the run stops writing.
func (t *SyncTrigger) hold(ctx context.Context, owner string) (context.Context, func()) {
	if t.lock == nil {
		return ctx, func() {}
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	interval := t.lock.TTL() / 3
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				ok, err := t.lock.Extend(runCtx, owner)
				if err != nil {
					if runCtx.Err() == nil {
						log.Warn().Err(err).Msg("Failed to extend sync lock")
					}
					continue
				}
				if !ok {
					log.Error().Str("job_id", t.CurrentJobID()).Msg("Sync lock lost, stopping sync")
					cancel(utils.ErrSyncLockLost)
					return
				}
			}
		}
	}()

	return runCtx, func() {
		cancel(nil)
		<-done
	}
}

func (t *SyncTrigger) release(owner string) {
	if t.lock != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := t.lock.Release(ctx, owner); err != nil {
			log.Error().Err(err).Msg("Failed to release sync lock")
		}
		cancel()
	}
	t.setCurrent("")
	t.running.Store(false)
}

func (t *SyncTrigger) setCurrent(id string) {
	t.mu.Lock()
	t.current = id
	t.mu.Unlock()
}
