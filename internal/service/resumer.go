package service

import (
	"context"
	"errors"
	"log/slog"
)

// ResumerServiceOptions groups dependencies for ResumerService.
type ResumerServiceOptions struct {
	Jobs   *JobService  // Required
	Logger *slog.Logger // Optional
}

// ResumerService picks up the job a previous process left running.
type ResumerService struct {
	jobs   *JobService
	logger *slog.Logger
}

// NewResumerService constructs a ResumerService.
func NewResumerService(opts ResumerServiceOptions) (*ResumerService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumerService{jobs: opts.Jobs, logger: logger.With("component", "resumer")}, nil
}

// Run resumes the running job, if any, and returns when that run ends.
// A run held by another live process is left alone.
func (r *ResumerService) Run(ctx context.Context) error {
	active, err := r.jobs.Active(ctx)
	if err != nil {
		return err
	}
	if active == nil {
		r.logger.InfoContext(ctx, "no interrupted job to resume")
		return nil
	}

	sum, err := r.jobs.Resume(ctx, active.ID)
	switch {
	case errors.Is(err, ErrRunInProgress), errors.Is(err, ErrJobNotRunning):
		r.logger.InfoContext(ctx, "running job is owned by another run", "job_id", active.ID, "reason", err)
		return nil
	case err != nil:
		// The run was finalized as failed; nothing else for the resumer to do.
		r.logger.ErrorContext(ctx, "resumed job run failed", "job_id", active.ID, "error", err)
		return nil
	}
	r.logger.InfoContext(ctx, "interrupted job resumed", "job_id", active.ID, "status", sum.Status,
		"successful", sum.Successful, "failed", sum.Failed)
	return nil
}
