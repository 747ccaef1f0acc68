package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
)

var (
	errFakeNotFound    = apperrors.NotFound("job not found")
	errFakeRunning     = apperrors.Conflict("job is already running")
	errFakeOtherActive = apperrors.Conflict("another job is already running")
	errFakeNotPending  = apperrors.Conflict("job item is not pending")
)

// memStore is an in-memory core.JobStore with the same transition rules as
// the Postgres store. ops records the order of mutating calls.
type memStore struct {
	mu     sync.Mutex
	jobs   map[string]*model.Job
	order  []string
	nextID int64
	ops    []string

	// updateErr, when set, is consulted before every UpdateItem.
	updateErr func(itemID int64) error
}

var _ core.JobStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{jobs: map[string]*model.Job{}}
}

func (s *memStore) record(op string) { s.ops = append(s.ops, op) }

func (s *memStore) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

func (s *memStore) CreateJob(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &model.Job{
		ID:         uuid.NewString(),
		Status:     model.JobStatusPending,
		CreatedAt:  time.Now(),
		TotalItems: len(req.Items),
	}
	for _, it := range req.Items {
		s.nextID++
		job.Items = append(job.Items, model.JobItem{
			ID:                s.nextID,
			JobID:             job.ID,
			Sender:            it.Sender,
			SenderEmail:       it.SenderEmail,
			UnsubscribeURL:    it.UnsubscribeURL,
			UnsubscribeMailto: it.UnsubscribeMailto,
			OneClick:          it.OneClick,
			Status:            model.ItemStatusPending,
		})
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.record("create")
	return cloneJob(job), nil
}

func cloneJob(j *model.Job) *model.Job {
	c := *j
	c.Items = append([]model.JobItem(nil), j.Items...)
	return &c
}

func (s *memStore) GetJob(_ context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return cloneJob(j), nil
}

func (s *memStore) ListJobs(_ context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Job
	for i := len(s.order) - 1; i >= 0; i-- {
		j := cloneJob(s.jobs[s.order[i]])
		j.Items = nil
		out = append(out, j)
	}
	if opts.Offset >= len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *memStore) StartJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return errFakeNotFound
	}
	if j.Status == model.JobStatusRunning {
		return errFakeRunning
	}
	for _, other := range s.jobs {
		if other.Status == model.JobStatusRunning {
			return fmt.Errorf("%w: %s", errFakeOtherActive, other.ID)
		}
	}
	now := time.Now()
	j.Status = model.JobStatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
	s.record("start")
	return nil
}

func (s *memStore) findItem(itemID int64) (*model.Job, *model.JobItem) {
	for _, j := range s.jobs {
		for i := range j.Items {
			if j.Items[i].ID == itemID {
				return j, &j.Items[i]
			}
		}
	}
	return nil, nil
}

func (s *memStore) UpdateItem(_ context.Context, p core.UpdateItemParams) error {
	if s.updateErr != nil {
		if err := s.updateErr(p.ItemID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, it := s.findItem(p.ItemID)
	if it == nil {
		return apperrors.NotFound("job item not found")
	}
	if it.Status != model.ItemStatusPending {
		return errFakeNotPending
	}
	now := time.Now()
	method := p.Method
	it.Status = p.Status
	it.MethodAttempted = &method
	it.ErrorMessage = p.ErrorMessage
	it.AttemptedAt = &now

	j.CompletedItems++
	if p.Status == model.ItemStatusSuccess {
		j.SuccessfulItems++
	} else {
		j.FailedItems++
	}
	s.record(fmt.Sprintf("update:%d", p.ItemID))
	return nil
}

func (s *memStore) CompleteJob(_ context.Context, id string, status model.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return errFakeNotFound
	}
	if !status.IsTerminal() {
		return errors.New("status must be terminal")
	}
	now := time.Now()
	j.Status = status
	j.CompletedAt = &now
	s.record("complete:" + string(status))
	return nil
}

func (s *memStore) itemsWith(jobID string, status model.ItemStatus) []model.JobItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	var out []model.JobItem
	for _, it := range j.Items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (s *memStore) GetPendingItems(_ context.Context, jobID string) ([]model.JobItem, error) {
	return s.itemsWith(jobID, model.ItemStatusPending), nil
}

func (s *memStore) ListFailedItems(_ context.Context, jobID string) ([]model.JobItem, error) {
	return s.itemsWith(jobID, model.ItemStatusFailed), nil
}

func (s *memStore) ResetFailedItems(_ context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return 0, errFakeNotFound
	}
	if j.Status == model.JobStatusRunning {
		return 0, errFakeRunning
	}
	n := 0
	for i := range j.Items {
		it := &j.Items[i]
		if it.Status != model.ItemStatusFailed {
			continue
		}
		it.Status = model.ItemStatusPending
		it.RetryCount++
		it.MethodAttempted = nil
		it.ErrorMessage = nil
		it.AttemptedAt = nil
		n++
	}
	if n > 0 {
		j.Status = model.JobStatusPending
		j.CompletedItems -= n
		j.FailedItems -= n
		j.CompletedAt = nil
		s.record("reset")
	}
	return n, nil
}

func (s *memStore) GetActiveJob(_ context.Context) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.Status == model.JobStatusRunning {
			return cloneJob(j), nil
		}
	}
	return nil, nil //nolint:nilnil // no running job is not an error
}

// setStatus forces a job status, simulating a crashed process.
func (s *memStore) setStatus(id string, status model.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id].Status = status
}
