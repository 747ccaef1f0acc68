package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
	"github.com/target/mmk-unsubscribe/internal/mocks"
	"github.com/target/mmk-unsubscribe/internal/testutil"
)

const testJobID = "0b7f3c1e-5d2a-4f6b-8c9d-0e1f2a3b4c5d"

// recordingRunner is a JobRunner that records the jobs it was asked to run.
type recordingRunner struct {
	mu      sync.Mutex
	runs    []string
	resumes []string
	err     error
	ran     chan string
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{ran: make(chan string, 8)}
}

func (r *recordingRunner) Run(_ context.Context, id string) (*RunSummary, error) {
	r.mu.Lock()
	r.runs = append(r.runs, id)
	r.mu.Unlock()
	r.ran <- id
	return &RunSummary{JobID: id, Status: model.JobStatusCompleted}, r.err
}

func (r *recordingRunner) Resume(_ context.Context, id string) (*RunSummary, error) {
	r.mu.Lock()
	r.resumes = append(r.resumes, id)
	r.mu.Unlock()
	return &RunSummary{JobID: id, Status: model.JobStatusCompleted}, r.err
}

func (r *recordingRunner) Runs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func newMockedJobService(t *testing.T) (*JobService, *mocks.MockJobStore, *recordingRunner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockJobStore(ctrl)
	runner := newRecordingRunner()
	return MustNewJobService(JobServiceOptions{Store: store, Runner: runner}), store, runner
}

func TestNewJobService_Validation(t *testing.T) {
	_, err := NewJobService(JobServiceOptions{})
	require.Error(t, err)
	_, err = NewJobService(JobServiceOptions{Store: newMemStore()})
	require.Error(t, err)
	assert.Panics(t, func() { MustNewJobService(JobServiceOptions{}) })
}

func TestJobService_Retry(t *testing.T) {
	ctx := context.Background()

	t.Run("zero failed items does not run", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusCompleted}, nil)
		store.EXPECT().GetActiveJob(gomock.Any()).Return(nil, nil)
		store.EXPECT().ResetFailedItems(gomock.Any(), testJobID).Return(0, nil)

		res, err := svc.Retry(ctx, testJobID)
		require.NoError(t, err)
		assert.Equal(t, &model.RetryResult{JobID: testJobID, Retried: 0}, res)
		assert.Empty(t, runner.Runs())
	})

	t.Run("running job is a conflict", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusRunning}, nil)

		_, err := svc.Retry(ctx, testJobID)
		require.ErrorIs(t, err, ErrJobAlreadyRunning)
		assert.True(t, apperrors.IsConflict(err))
		assert.Empty(t, runner.Runs())
	})

	t.Run("unknown job", func(t *testing.T) {
		svc, store, _ := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(nil, apperrors.NotFound("job not found"))

		_, err := svc.Retry(ctx, testJobID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("failed items are reset then run", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		gomock.InOrder(
			store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusFailed}, nil),
			store.EXPECT().GetActiveJob(gomock.Any()).Return(nil, nil),
			store.EXPECT().ResetFailedItems(gomock.Any(), testJobID).Return(2, nil),
		)

		res, err := svc.Retry(ctx, testJobID)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Retried)
		assert.Equal(t, []string{testJobID}, runner.Runs())
	})

	t.Run("another running job blocks the reset", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusCompleted}, nil)
		store.EXPECT().GetActiveJob(gomock.Any()).Return(&model.Job{ID: "other", Status: model.JobStatusRunning}, nil)
		store.EXPECT().ResetFailedItems(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Retry(ctx, testJobID)
		require.ErrorIs(t, err, ErrAnotherJobRunning)
		assert.True(t, apperrors.IsConflict(err))
		assert.Empty(t, runner.Runs())
	})
}

func TestJobService_RetryAsync(t *testing.T) {
	svc, store, runner := newMockedJobService(t)
	store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusCompleted}, nil)
	store.EXPECT().GetActiveJob(gomock.Any()).Return(nil, nil)
	store.EXPECT().ResetFailedItems(gomock.Any(), testJobID).Return(1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.RetryAsync(ctx, testJobID)
	cancel()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)

	select {
	case id := <-runner.ran:
		assert.Equal(t, testJobID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("background run did not start")
	}
	require.NoError(t, svc.Wait(context.Background()))
}

func TestJobService_RunAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("starts in background", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusPending}, nil)
		store.EXPECT().GetActiveJob(gomock.Any()).Return(nil, nil)

		require.NoError(t, svc.RunAsync(ctx, testJobID))
		require.NoError(t, svc.Wait(ctx))
		assert.Equal(t, []string{testJobID}, runner.Runs())
	})

	t.Run("job already running", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusRunning}, nil)

		require.ErrorIs(t, svc.RunAsync(ctx, testJobID), ErrJobAlreadyRunning)
		assert.Empty(t, runner.Runs())
	})

	t.Run("another job running", func(t *testing.T) {
		svc, store, runner := newMockedJobService(t)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{ID: testJobID, Status: model.JobStatusPending}, nil)
		store.EXPECT().GetActiveJob(gomock.Any()).Return(&model.Job{ID: "other", Status: model.JobStatusRunning}, nil)

		err := svc.RunAsync(ctx, testJobID)
		require.ErrorIs(t, err, ErrAnotherJobRunning)
		assert.Contains(t, err.Error(), "other")
		assert.Empty(t, runner.Runs())
	})
}

func TestJobService_Status(t *testing.T) {
	svc, store, _ := newMockedJobService(t)
	method := model.MethodOneClick
	store.EXPECT().GetJob(gomock.Any(), testJobID).Return(&model.Job{
		ID: testJobID, Status: model.JobStatusRunning, TotalItems: 2, CompletedItems: 1, SuccessfulItems: 1,
		Items: []model.JobItem{
			{ID: 1, Sender: "Shop", Status: model.ItemStatusSuccess, MethodAttempted: &method},
			{ID: 2, Sender: "News", Status: model.ItemStatusPending},
		},
	}, nil)

	snap, err := svc.Status(context.Background(), testJobID)
	require.NoError(t, err)
	assert.True(t, snap.Running)
	assert.Equal(t, 1, snap.Progress)
	assert.Equal(t, 2, snap.Total)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "Done", snap.Results[0].Message)
}

func TestJobService_FailedItems(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown job", func(t *testing.T) {
		svc, store, _ := newMockedJobService(t)
		store.EXPECT().ListFailedItems(gomock.Any(), testJobID).Return(nil, nil)
		store.EXPECT().GetJob(gomock.Any(), testJobID).Return(nil, apperrors.NotFound("job not found"))

		_, err := svc.FailedItems(ctx, testJobID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("failed items", func(t *testing.T) {
		svc, store, _ := newMockedJobService(t)
		method := model.MethodBrowser
		store.EXPECT().ListFailedItems(gomock.Any(), testJobID).Return([]model.JobItem{{
			ID: 9, Sender: "Shop", UnsubscribeURL: testutil.StringPtr("https://shop.example/u"),
			Status: model.ItemStatusFailed, MethodAttempted: &method, ErrorMessage: testutil.StringPtr("Page loaded (manual may be needed)"),
		}}, nil)

		items, err := svc.FailedItems(ctx, testJobID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(9), items[0].ItemID)
		assert.Equal(t, "https://shop.example/u", *items[0].UnsubscribeURL)
	})
}

// TestJobService_RetryOnlyFailed runs the full stack against the in-memory store.
func TestJobService_RetryOnlyFailed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newScripted().set("https://b.example/page", core.Outcome{Message: "Page loaded (manual may be needed)"})
	svc := MustNewJobService(JobServiceOptions{Store: store, Runner: newTestOrchestrator(t, store, s, nil)})

	job := abcJob(t, store)
	_, err := svc.Run(ctx, job.ID)
	require.NoError(t, err)

	s.set("https://b.example/page", core.Outcome{Success: true, Message: "Clicked"})
	res, err := svc.Retry(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)

	assert.Equal(t, 1, s.Calls("https://a.example/one-click"), "success items are never re-attempted")
	assert.Equal(t, 1, s.Calls("mailto:unsub@c.example"))
	assert.Equal(t, 2, s.Calls("https://b.example/page"))

	got, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 3, got.SuccessfulItems)
	assert.Zero(t, got.FailedItems)
	assert.Equal(t, 1, got.Items[1].RetryCount)

	res, err = svc.Retry(ctx, job.ID)
	require.NoError(t, err)
	assert.Zero(t, res.Retried)
	got, err = svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status, "retry with nothing failed leaves status unchanged")
}

func TestJobService_RetryAsync_AnotherJobRunning(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newScripted().set("https://b.example/page", core.Outcome{Message: "Page loaded (manual may be needed)"})
	svc := MustNewJobService(JobServiceOptions{Store: store, Runner: newTestOrchestrator(t, store, s, nil)})

	first := abcJob(t, store)
	_, err := svc.Run(ctx, first.ID)
	require.NoError(t, err)

	second := abcJob(t, store)
	require.NoError(t, store.StartJob(ctx, second.ID))

	res, err := svc.RetryAsync(ctx, first.ID)
	require.ErrorIs(t, err, ErrAnotherJobRunning)
	assert.Nil(t, res)
	require.NoError(t, svc.Wait(ctx))

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status, "job is left as it was")
	assert.Equal(t, 1, got.FailedItems)
	assert.Equal(t, 3, got.CompletedItems)
	assert.Zero(t, got.Items[1].RetryCount)
	assert.Equal(t, 1, s.Calls("https://b.example/page"))
}
