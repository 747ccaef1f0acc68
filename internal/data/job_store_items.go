package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/data/txutil"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
)

var _ core.JobStore = (*JobStore)(nil)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryItems(ctx context.Context, q queryer, query string, args ...any) ([]model.JobItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []model.JobItem
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan item: %w", scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// UpdateItem writes the terminal outcome of a pending item and increments the
// job's completed counter together with its successful or failed counter.
// Items that are no longer pending are rejected with ErrItemNotPending.
func (s *JobStore) UpdateItem(ctx context.Context, params core.UpdateItemParams) error {
	if !params.Status.IsTerminal() {
		return apperrors.ValidationField("status", fmt.Sprintf("invalid terminal item status %q", params.Status))
	}
	if !params.Method.Valid() {
		return apperrors.ValidationField("method", fmt.Sprintf("invalid method %q", params.Method))
	}

	successful, failed := 0, 1
	if params.Status == model.ItemStatusSuccess {
		successful, failed = 1, 0
	}
	now := s.timeProvider.Now().UTC()

	err := txutil.WithTx(ctx, s.DB, txutil.Config{Fn: func(tx *sql.Tx) error {
		var jobID string
		err := tx.QueryRowContext(ctx, `
			UPDATE unsubscribe_job_items
			SET status = $2, method_attempted = $3, error_message = $4, attempted_at = $5
			WHERE id = $1 AND status = 'pending'
			RETURNING job_id
		`, params.ItemID, string(params.Status), string(params.Method), nullableTrimmed(params.ErrorMessage), now,
		).Scan(&jobID)
		if errors.Is(err, sql.ErrNoRows) {
			return itemMissOrDone(ctx, tx, params.ItemID)
		}
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE unsubscribe_jobs
			SET completed_items = completed_items + 1,
			    successful_items = successful_items + $2,
			    failed_items = failed_items + $3
			WHERE id = $1
		`, jobID, successful, failed); err != nil {
			return fmt.Errorf("update job counters: %w", err)
		}
		return nil
	}})
	if err != nil {
		if isStoreSentinel(err) {
			return err
		}
		return fmt.Errorf("update item %d: %w", params.ItemID, apperrors.MapDBError(err))
	}
	return nil
}

func itemMissOrDone(ctx context.Context, tx *sql.Tx, itemID int64) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM unsubscribe_job_items WHERE id = $1)`, itemID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check item: %w", err)
	}
	if !exists {
		return ErrItemNotFound
	}
	return ErrItemNotPending
}

// GetPendingItems returns the job's pending items ordered by id.
func (s *JobStore) GetPendingItems(ctx context.Context, jobID string) ([]model.JobItem, error) {
	return s.itemsByStatus(ctx, jobID, model.ItemStatusPending)
}

// ListFailedItems returns the job's failed items ordered by id.
func (s *JobStore) ListFailedItems(ctx context.Context, jobID string) ([]model.JobItem, error) {
	return s.itemsByStatus(ctx, jobID, model.ItemStatusFailed)
}

func (s *JobStore) itemsByStatus(ctx context.Context, jobID string, status model.ItemStatus) ([]model.JobItem, error) {
	if !validJobID(jobID) {
		return nil, ErrJobNotFound
	}
	items, err := queryItems(ctx, s.DB, `
		SELECT `+itemColumns+`
		FROM unsubscribe_job_items
		WHERE job_id = $1 AND status = $2
		ORDER BY id
	`, jobID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list %s items: %w", status, apperrors.MapDBError(err))
	}
	return items, nil
}

// ResetFailedItems moves the job's failed items back to pending for another
// pass. Each reset item has its attempt fields cleared and retry_count
// incremented; the job counters are decremented by the same amount and the job
// returns to pending. A job with no failed items is left untouched.
func (s *JobStore) ResetFailedItems(ctx context.Context, jobID string) (int, error) {
	if !validJobID(jobID) {
		return 0, ErrJobNotFound
	}

	var count int
	err := txutil.WithTx(ctx, s.DB, txutil.Config{Fn: func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM unsubscribe_jobs WHERE id = $1 FOR UPDATE`, jobID,
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

		res, err := tx.ExecContext(ctx, `
			UPDATE unsubscribe_job_items
			SET status = 'pending',
			    retry_count = retry_count + 1,
			    method_attempted = NULL,
			    error_message = NULL,
			    attempted_at = NULL
			WHERE job_id = $1 AND status = 'failed'
		`, jobID)
		if err != nil {
			return fmt.Errorf("reset items: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		count = int(n)
		if count == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE unsubscribe_jobs
			SET status = 'pending',
			    completed_items = completed_items - $2,
			    failed_items = failed_items - $2,
			    completed_at = NULL
			WHERE id = $1
		`, jobID, count); err != nil {
			return fmt.Errorf("reset job counters: %w", err)
		}
		return nil
	}})
	if err != nil {
		if isStoreSentinel(err) {
			return 0, err
		}
		return 0, fmt.Errorf("reset failed items: %w", apperrors.MapDBError(err))
	}

	if count > 0 {
		s.logger.InfoContext(ctx, "failed items reset", "job_id", jobID, "count", count)
	}
	return count, nil
}
