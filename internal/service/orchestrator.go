package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/observability/metrics"
)

const defaultLockTTL = time.Hour

// RunSummary reports the result of one orchestrated run.
type RunSummary struct {
	JobID  string
	Status model.JobStatus
	DispatchSummary
}

// OrchestratorOptions groups dependencies for Orchestrator.
type OrchestratorOptions struct {
	Store               core.JobStore // Required: job store
	Strategies          Strategies    // Required: one-click, browser and mailto strategies
	OneClickConcurrency int           // Optional: one-click and mailto-only bound (default 5)
	BrowserConcurrency  int           // Optional: browser bound (default 3)
	Lock                core.RunLock  // Optional: cross-process run lock; defaults to an in-process lock
	LockTTL             time.Duration // Optional: lock expiry (default 1h)
	Metrics             *metrics.Recorder
	Logger              *slog.Logger
}

// Orchestrator drives a job from running to a terminal status.
type Orchestrator struct {
	store      core.JobStore
	dispatcher *LaneDispatcher
	lock       core.RunLock
	lockTTL    time.Duration
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errJobStoreRequired
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec, err := NewFallbackExecutor(opts.Strategies, opts.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create fallback executor: %w", err)
	}
	dispatcher, err := NewLaneDispatcher(LaneDispatcherOptions{
		Store:               opts.Store,
		Executor:            exec,
		OneClickConcurrency: opts.OneClickConcurrency,
		BrowserConcurrency:  opts.BrowserConcurrency,
		Metrics:             opts.Metrics,
		Logger:              logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create lane dispatcher: %w", err)
	}

	lock := opts.Lock
	if lock == nil {
		lock = &LocalRunLock{}
	}
	ttl := opts.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &Orchestrator{
		store:      opts.Store,
		dispatcher: dispatcher,
		lock:       lock,
		lockTTL:    ttl,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "orchestrator"),
	}, nil
}

// Run starts jobID and processes all of its pending items. The job is
// marked running before any item is written and reaches its terminal status
// only after every item write.
func (o *Orchestrator) Run(ctx context.Context, jobID string) (*RunSummary, error) {
	release, err := o.acquire(ctx, jobID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.store.StartJob(ctx, jobID); err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}
	o.logger.InfoContext(ctx, "job run started", "job_id", jobID)
	return o.drive(ctx, jobID)
}

// Resume continues a job that was left running by a process that died
// mid-run. Items already recorded are not attempted again.
func (o *Orchestrator) Resume(ctx context.Context, jobID string) (*RunSummary, error) {
	release, err := o.acquire(ctx, jobID)
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job.Status != model.JobStatusRunning {
		return nil, ErrJobNotRunning
	}
	o.logger.InfoContext(ctx, "resuming job run", "job_id", jobID, "completed_items", job.CompletedItems,
		"total_items", job.TotalItems)
	return o.drive(ctx, jobID)
}

func (o *Orchestrator) acquire(ctx context.Context, jobID string) (func(), error) {
	release, ok, err := o.lock.Acquire(ctx, jobID, o.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return release, nil
}

func (o *Orchestrator) drive(ctx context.Context, jobID string) (*RunSummary, error) {
	start := time.Now()
	sum := &RunSummary{JobID: jobID}

	items, runErr := o.store.GetPendingItems(ctx, jobID)
	if runErr == nil {
		sum.DispatchSummary, runErr = o.dispatcher.Dispatch(ctx, jobID, items)
	} else {
		runErr = fmt.Errorf("get pending items: %w", runErr)
	}

	sum.Status = model.JobStatusCompleted
	if runErr != nil {
		sum.Status = model.JobStatusFailed
	}

	// The terminal write must happen even when the caller has gone away.
	if err := o.store.CompleteJob(context.WithoutCancel(ctx), jobID, sum.Status); err != nil {
		o.logger.ErrorContext(ctx, "failed to finalize job", "job_id", jobID, "status", sum.Status, "error", err)
		o.metrics.RunFinished(string(model.JobStatusFailed), time.Since(start), err)
		if runErr != nil {
			return sum, fmt.Errorf("%w; complete job: %w", runErr, err)
		}
		return sum, fmt.Errorf("complete job: %w", err)
	}
	o.metrics.RunFinished(string(sum.Status), time.Since(start), runErr)

	if runErr != nil {
		o.logger.ErrorContext(ctx, "job run failed", "job_id", jobID, "error", runErr,
			"successful", sum.Successful, "failed", sum.Failed)
		return sum, runErr
	}
	o.logger.InfoContext(ctx, "job run completed", "job_id", jobID,
		"dispatched", sum.Dispatched, "skipped", sum.Skipped,
		"successful", sum.Successful, "failed", sum.Failed,
		"duration", time.Since(start))
	return sum, nil
}
