// Package data implements Postgres persistence for unsubscribe jobs and their items.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
)

var (
	// ErrJobNotFound is returned when a job does not exist.
	ErrJobNotFound error = apperrors.NotFound("job not found")
	// ErrItemNotFound is returned when an item does not exist.
	ErrItemNotFound error = apperrors.NotFound("job item not found")
	// ErrJobRunning is returned when an operation requires the job not to be running.
	ErrJobRunning error = apperrors.Conflict("job is already running")
	// ErrActiveJobExists is returned by StartJob when a different job is running.
	ErrActiveJobExists error = apperrors.Conflict("another job is already running")
	// ErrItemNotPending is returned by UpdateItem when the item already has a terminal status.
	ErrItemNotPending error = apperrors.Conflict("job item is not pending")
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// advisoryLockJobStart serialises StartJob so the single-running-job check and update are atomic.
	advisoryLockJobStart int64 = 7_400_100

	runningJobIndex = "unsubscribe_jobs_single_running_idx"
)

// StoreConfig holds configuration options for the job store.
type StoreConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobStore provides database operations for unsubscribe jobs and items.
type JobStore struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobStore creates a new JobStore with the given database connection and configuration.
func NewJobStore(db *sql.DB, cfg StoreConfig) *JobStore {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobStore{
		DB:           db,
		timeProvider: tp,
		logger:       logger.With("component", "job_store"),
	}
}

// Ping reports whether the backing database is reachable.
func (s *JobStore) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping job store: %w", apperrors.MapDBError(err))
	}
	return nil
}

const jobColumns = `
  id,
  status,
  created_at,
  started_at,
  completed_at,
  total_items,
  completed_items,
  successful_items,
  failed_items
`

const itemColumns = `
  id,
  job_id,
  sender,
  sender_email,
  unsubscribe_url,
  unsubscribe_mailto,
  one_click,
  method_attempted,
  status,
  error_message,
  attempted_at,
  retry_count
`
