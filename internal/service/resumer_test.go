package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

func TestResumerService_ResumesRunningJob(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newScripted()
	jobs := MustNewJobService(JobServiceOptions{Store: store, Runner: newTestOrchestrator(t, store, s, nil)})
	job := abcJob(t, store)
	require.NoError(t, store.StartJob(ctx, job.ID))

	r, err := NewResumerService(ResumerServiceOptions{Jobs: jobs})
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 3, got.CompletedItems)
}

func TestResumerService_NothingToResume(t *testing.T) {
	store := newMemStore()
	runner := newRecordingRunner()
	jobs := MustNewJobService(JobServiceOptions{Store: store, Runner: runner})
	abcJob(t, store)

	r, err := NewResumerService(ResumerServiceOptions{Jobs: jobs})
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, runner.resumes)
}

func TestResumerService_RunOwnedElsewhere(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	lock := &LocalRunLock{}
	jobs := MustNewJobService(JobServiceOptions{Store: store, Runner: newTestOrchestrator(t, store, newScripted(), lock)})
	job := abcJob(t, store)
	store.setStatus(job.ID, model.JobStatusRunning)

	release, ok, err := lock.Acquire(ctx, job.ID, 0)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	r, err := NewResumerService(ResumerServiceOptions{Jobs: jobs})
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, got.Status, "job owned by a live run is untouched")
}

func TestNewResumerService_Validation(t *testing.T) {
	_, err := NewResumerService(ResumerServiceOptions{})
	require.Error(t, err)
}
