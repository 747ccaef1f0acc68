// Package httpx provides the HTTP JSON API of the unsubscribe job service.
package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// JobAPI is the subset of *service.JobService used by the handlers.
type JobAPI interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	Get(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
	Active(ctx context.Context) (*model.Job, error)
	Status(ctx context.Context, id string) (model.JobStatusSnapshot, error)
	FailedItems(ctx context.Context, id string) ([]model.FailedItem, error)
	RunAsync(ctx context.Context, id string) error
	RetryAsync(ctx context.Context, id string) (*model.RetryResult, error)
}

var _ JobAPI = (*service.JobService)(nil)

// JobHandlers provides HTTP handlers for unsubscribe job operations.
type JobHandlers struct {
	Svc JobAPI
}

// runAccepted is the body of a 202 response to a run request.
type runAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CreateJob handles HTTP requests to create a new job.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req core.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// ListJobs returns job summaries, newest first.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	opts, err := parseJobListOptions(r)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	jobs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	WriteJSON(w, http.StatusOK, jobs)
}

// GetActiveJob returns the running job, or 204 when nothing is running.
func (h *JobHandlers) GetActiveJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.Active(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if job == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// GetJob returns the job with all of its items.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// GetJobStatus returns the polling snapshot of a job.
func (h *JobHandlers) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	snap, err := h.Svc.Status(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// RunJob starts a background run of the job.
func (h *JobHandlers) RunJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.RunAsync(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, runAccepted{JobID: id, Status: "started"})
}

// RetryJob resets the job's failed items and runs it again in the background.
// With nothing to retry the response is 200 with retried=0.
func (h *JobHandlers) RetryJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.RetryAsync(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	code := http.StatusAccepted
	if res.Retried == 0 {
		code = http.StatusOK
	}
	WriteJSON(w, code, res)
}

// FailedItems lists the job's failed items for manual follow-up.
func (h *JobHandlers) FailedItems(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	items, err := h.Svc.FailedItems(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func jobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return "", false
	}
	return id, true
}
