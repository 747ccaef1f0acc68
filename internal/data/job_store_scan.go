package data

import (
	"database/sql"
	"strings"
	"time"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (*model.Job, error) {
	job := &model.Job{}
	var startedAt, completedAt sql.NullTime
	if err := scanner.Scan(
		&job.ID,
		&job.Status,
		&job.CreatedAt,
		&startedAt,
		&completedAt,
		&job.TotalItems,
		&job.CompletedItems,
		&job.SuccessfulItems,
		&job.FailedItems,
	); err != nil {
		return nil, err
	}
	job.CreatedAt = job.CreatedAt.UTC()
	job.StartedAt = cloneNullableTime(startedAt)
	job.CompletedAt = cloneNullableTime(completedAt)
	return job, nil
}

type itemRowData struct {
	url, mailto, method, errorMessage sql.NullString
	attemptedAt                       sql.NullTime
}

func (d *itemRowData) scanInto(scanner rowScanner, item *model.JobItem) error {
	return scanner.Scan(
		&item.ID,
		&item.JobID,
		&item.Sender,
		&item.SenderEmail,
		&d.url,
		&d.mailto,
		&item.OneClick,
		&d.method,
		&item.Status,
		&d.errorMessage,
		&d.attemptedAt,
		&item.RetryCount,
	)
}

func (d *itemRowData) apply(item *model.JobItem) {
	item.UnsubscribeURL = cloneNullableString(d.url)
	item.UnsubscribeMailto = cloneNullableString(d.mailto)
	item.ErrorMessage = cloneNullableString(d.errorMessage)
	item.AttemptedAt = cloneNullableTime(d.attemptedAt)
	if d.method.Valid {
		m := model.Method(d.method.String)
		item.MethodAttempted = &m
	}
}

func scanItem(scanner rowScanner) (model.JobItem, error) {
	var item model.JobItem
	var data itemRowData
	if err := data.scanInto(scanner, &item); err != nil {
		return model.JobItem{}, err
	}
	data.apply(&item)
	return item, nil
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// nullableTrimmed converts an optional string into a query argument, mapping blanks to NULL.
func nullableTrimmed(s *string) any {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return v
}
