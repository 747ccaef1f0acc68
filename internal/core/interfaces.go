package core

import (
	"context"
	"time"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

// JobStore is durable persistence for unsubscribe jobs and their items.
// It is the single source of truth for job status and counters; every
// mutation is a self-contained transaction.
type JobStore interface {
	// CreateJob inserts a pending job and all of its pending items atomically.
	CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	// GetJob returns the job with its items ordered by id.
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// ListJobs returns job summaries (without items), newest first.
	ListJobs(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
	// StartJob marks the job running. It fails when this or any other job is already running.
	StartJob(ctx context.Context, id string) error
	// UpdateItem records the terminal outcome of a pending item and bumps the job counters.
	UpdateItem(ctx context.Context, params UpdateItemParams) error
	// CompleteJob moves the job to a terminal status.
	CompleteJob(ctx context.Context, id string, status model.JobStatus) error
	// GetPendingItems returns the job's pending items ordered by id.
	GetPendingItems(ctx context.Context, jobID string) ([]model.JobItem, error)
	// ListFailedItems returns the job's failed items ordered by id.
	ListFailedItems(ctx context.Context, jobID string) ([]model.JobItem, error)
	// ResetFailedItems moves every failed item back to pending and returns how many moved.
	ResetFailedItems(ctx context.Context, jobID string) (int, error)
	// GetActiveJob returns the running job, or nil when none is running.
	GetActiveJob(ctx context.Context) (*model.Job, error)
}

// UpdateItemParams groups the terminal fields written by JobStore.UpdateItem.
type UpdateItemParams struct {
	ItemID       int64
	Status       model.ItemStatus
	Method       model.Method
	ErrorMessage *string
}

// RunLock serialises job runs across processes. Acquire returns ok=false when
// another holder owns the lock; release must be called once the run ends.
type RunLock interface {
	Acquire(ctx context.Context, jobID string, ttl time.Duration) (release func(), ok bool, err error)
}
