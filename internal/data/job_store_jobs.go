package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/target/mmk-unsubscribe/internal/data/txutil"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
)

// snapshotTx reads a job and its items from one consistent snapshot.
var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func validJobID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CreateJob inserts a pending job and all of its pending items in one transaction.
func (s *JobStore) CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job request")
	}

	id := uuid.NewString()
	now := s.timeProvider.Now().UTC()

	var job *model.Job
	err := txutil.WithTx(ctx, s.DB, txutil.Config{Fn: func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO unsubscribe_jobs (id, status, created_at, total_items)
			VALUES ($1, 'pending', $2, $3)
			RETURNING `+jobColumns,
			id, now, len(req.Items),
		)
		j, err := scanJob(row)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}

		j.Items = make([]model.JobItem, 0, len(req.Items))
		for i := range req.Items {
			item, insErr := insertItem(ctx, tx, j.ID, &req.Items[i])
			if insErr != nil {
				return fmt.Errorf("insert item %d: %w", i, insErr)
			}
			j.Items = append(j.Items, item)
		}
		job = j
		return nil
	}})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", apperrors.MapDBError(err))
	}

	s.logger.DebugContext(ctx, "job created", "job_id", job.ID, "total_items", job.TotalItems)
	return job, nil
}

func insertItem(ctx context.Context, tx *sql.Tx, jobID string, it *model.CreateJobItem) (model.JobItem, error) {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO unsubscribe_job_items
			(job_id, sender, sender_email, unsubscribe_url, unsubscribe_mailto, one_click)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		jobID, it.Sender, it.SenderEmail,
		nullableTrimmed(it.UnsubscribeURL), nullableTrimmed(it.UnsubscribeMailto), it.OneClick,
	)
	return scanItem(row)
}

// GetJob returns the job and its items ordered by id.
func (s *JobStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if !validJobID(id) {
		return nil, ErrJobNotFound
	}

	var job *model.Job
	err := txutil.WithTx(ctx, s.DB, txutil.Config{Opts: snapshotTx, Fn: func(tx *sql.Tx) error {
		j, err := scanJob(tx.QueryRowContext(ctx, `
			SELECT `+jobColumns+`
			FROM unsubscribe_jobs
			WHERE id = $1
		`, id))
		if err != nil {
			return err
		}

		items, err := queryItems(ctx, tx, `
			SELECT `+itemColumns+`
			FROM unsubscribe_job_items
			WHERE job_id = $1
			ORDER BY id
		`, id)
		if err != nil {
			return err
		}
		j.Items = items
		job = j
		return nil
	}})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// ListJobs returns job summaries without items, newest first.
func (s *JobStore) ListJobs(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM unsubscribe_jobs
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	jobs := make([]*model.Job, 0, limit)
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// StartJob marks the job running. It returns ErrJobRunning when the job is
// already running and ErrActiveJobExists when another job is; the check and
// the update run under one advisory lock.
func (s *JobStore) StartJob(ctx context.Context, id string) error {
	if !validJobID(id) {
		return ErrJobNotFound
	}
	now := s.timeProvider.Now().UTC()

	err := txutil.WithTx(ctx, s.DB, txutil.Config{Fn: func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockJobStart); err != nil {
			return fmt.Errorf("acquire start lock: %w", err)
		}

		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM unsubscribe_jobs WHERE id = $1 FOR UPDATE`, id,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("load job status: %w", err)
		}
		if model.JobStatus(status) == model.JobStatusRunning {
			return ErrJobRunning
		}

		var activeID string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM unsubscribe_jobs WHERE status = 'running' LIMIT 1`,
		).Scan(&activeID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrActiveJobExists, activeID)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check active job: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE unsubscribe_jobs
			SET status = 'running', started_at = $2, completed_at = NULL
			WHERE id = $1
		`, id, now); err != nil {
			if apperrors.IsUniqueViolation(err, runningJobIndex) {
				return ErrActiveJobExists
			}
			return fmt.Errorf("mark job running: %w", err)
		}
		return nil
	}})
	if err != nil {
		if isStoreSentinel(err) {
			return err
		}
		return fmt.Errorf("start job: %w", apperrors.MapDBError(err))
	}

	s.logger.InfoContext(ctx, "job started", "job_id", id)
	return nil
}

// CompleteJob moves the job to a terminal status and stamps completed_at.
func (s *JobStore) CompleteJob(ctx context.Context, id string, status model.JobStatus) error {
	if !status.IsTerminal() {
		return apperrors.ValidationField("status", fmt.Sprintf("invalid terminal job status %q", status))
	}
	if !validJobID(id) {
		return ErrJobNotFound
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE unsubscribe_jobs
		SET status = $2, completed_at = $3
		WHERE id = $1
	`, id, string(status), s.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete job: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrJobNotFound
	}

	s.logger.InfoContext(ctx, "job finished", "job_id", id, "status", status)
	return nil
}

// GetActiveJob returns the running job with its items, or nil when no job is running.
func (s *JobStore) GetActiveJob(ctx context.Context) (*model.Job, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, `
		SELECT id
		FROM unsubscribe_jobs
		WHERE status = 'running'
		ORDER BY started_at
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no active job is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("get active job: %w", apperrors.MapDBError(err))
	}

	job, err := s.GetJob(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return nil, nil //nolint:nilnil // finished and deleted between the two reads
	}
	return job, err
}

func isStoreSentinel(err error) bool {
	return errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrJobRunning) || errors.Is(err, ErrActiveJobExists) ||
		errors.Is(err, ErrItemNotPending)
}
