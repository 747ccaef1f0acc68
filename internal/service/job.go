// Package service composes the job store, lanes and strategies into the
// unsubscribe job operations exposed to the HTTP API and the admin CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/observability/metrics"
)

// JobRunner executes job runs. *Orchestrator is the production implementation.
type JobRunner interface {
	Run(ctx context.Context, jobID string) (*RunSummary, error)
	Resume(ctx context.Context, jobID string) (*RunSummary, error)
}

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Store   core.JobStore     // Required: job store
	Runner  JobRunner         // Required: run orchestrator
	Metrics *metrics.Recorder // Optional: Prometheus recorder
	Logger  *slog.Logger      // Optional: structured logger
}

// JobService provides the inbound operations on unsubscribe jobs.
//
// Synchronous Run and Retry block until the run finishes; the Async variants
// validate the request, then run in a tracked background goroutine.
type JobService struct {
	store   core.JobStore
	runner  JobRunner
	metrics *metrics.Recorder
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Store == nil {
		return nil, errJobStoreRequired
	}
	if opts.Runner == nil {
		return nil, errors.New("JobRunner is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "job_service")

	return &JobService{
		store:   opts.Store,
		runner:  opts.Runner,
		metrics: opts.Metrics,
		logger:  logger,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// Create persists a new pending job with all of its items.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job, err := s.store.CreateJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "total_items", job.TotalItems)
	return job, nil
}

// Get returns the job with all items.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	return s.store.GetJob(ctx, id)
}

// List returns job summaries, newest first.
func (s *JobService) List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	return s.store.ListJobs(ctx, opts)
}

// Active returns the running job, or nil.
func (s *JobService) Active(ctx context.Context) (*model.Job, error) {
	return s.store.GetActiveJob(ctx)
}

// Status returns the polling snapshot for a job.
func (s *JobService) Status(ctx context.Context, id string) (model.JobStatusSnapshot, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return model.JobStatusSnapshot{}, err
	}
	return ProjectStatus(job), nil
}

// FailedItems lists the job's failed items for manual follow-up.
func (s *JobService) FailedItems(ctx context.Context, id string) ([]model.FailedItem, error) {
	items, err := s.store.ListFailedItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		// Distinguish an unknown job from one without failures.
		if _, err := s.store.GetJob(ctx, id); err != nil {
			return nil, err
		}
	}
	return failedItems(items), nil
}

// Run executes the job synchronously.
func (s *JobService) Run(ctx context.Context, id string) (*RunSummary, error) {
	return s.runner.Run(ctx, id)
}

// RunAsync checks that id can be started and runs it in the background.
func (s *JobService) RunAsync(ctx context.Context, id string) error {
	if err := s.checkStartable(ctx, id); err != nil {
		return err
	}
	s.background(ctx, "run", id, s.runner.Run)
	return nil
}

// Resume continues a job left running by a crashed process.
func (s *JobService) Resume(ctx context.Context, id string) (*RunSummary, error) {
	return s.runner.Resume(ctx, id)
}

// Retry resets the job's failed items and runs the job again synchronously.
// With nothing to retry it returns {retried: 0} and leaves the job untouched.
func (s *JobService) Retry(ctx context.Context, id string) (*model.RetryResult, error) {
	res, err := s.reset(ctx, id)
	if err != nil || res.Retried == 0 {
		return res, err
	}
	if _, err := s.runner.Run(ctx, id); err != nil {
		return res, fmt.Errorf("run retried job: %w", err)
	}
	return res, nil
}

// RetryAsync resets the job's failed items and runs the job in the background.
func (s *JobService) RetryAsync(ctx context.Context, id string) (*model.RetryResult, error) {
	res, err := s.reset(ctx, id)
	if err != nil || res.Retried == 0 {
		return res, err
	}
	s.background(ctx, "retry", id, s.runner.Run)
	return res, nil
}

// reset refuses while any job is running: the reset would commit but the
// follow-up run could not start, stranding the job in pending.
func (s *JobService) reset(ctx context.Context, id string) (*model.RetryResult, error) {
	if err := s.checkStartable(ctx, id); err != nil {
		return nil, err
	}

	n, err := s.store.ResetFailedItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reset failed items: %w", err)
	}
	s.metrics.ItemsRetried(n)
	s.logger.InfoContext(ctx, "failed items reset for retry", "job_id", id, "retried", n)
	return &model.RetryResult{JobID: id, Retried: n}, nil
}

func (s *JobService) checkStartable(ctx context.Context, id string) error {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == model.JobStatusRunning {
		return ErrJobAlreadyRunning
	}
	active, err := s.store.GetActiveJob(ctx)
	if err != nil {
		return fmt.Errorf("get active job: %w", err)
	}
	if active != nil {
		return fmt.Errorf("%w: %s", ErrAnotherJobRunning, active.ID)
	}
	return nil
}

type runFunc func(ctx context.Context, id string) (*RunSummary, error)

// background runs fn detached from the request context; Wait blocks until
// every background run has returned.
func (s *JobService) background(ctx context.Context, op, id string, fn runFunc) {
	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := fn(runCtx, id); err != nil {
			s.logger.ErrorContext(runCtx, "background job run failed", "op", op, "job_id", id, "error", err)
		}
	}()
}

// Wait blocks until all background runs have finished or ctx is done.
func (s *JobService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
