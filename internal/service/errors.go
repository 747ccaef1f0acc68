package service

import (
	"errors"

	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
)

var (
	errJobStoreRequired = errors.New("JobStore is required")

	// ErrJobAlreadyRunning is returned when a run or retry targets a running job.
	ErrJobAlreadyRunning error = apperrors.Conflict("job is already running")
	// ErrAnotherJobRunning is returned when a different job holds the running slot.
	ErrAnotherJobRunning error = apperrors.Conflict("another job is already running")
	// ErrJobNotRunning is returned by Resume for a job that is not running.
	ErrJobNotRunning error = apperrors.Conflict("job is not running")
	// ErrRunInProgress is returned when the run lock is held by another run.
	ErrRunInProgress error = apperrors.Conflict("a job run is already in progress")
)
