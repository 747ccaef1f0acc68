package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/testutil"
)

func newTestDispatcher(t *testing.T, store *memStore, s *scripted, h, b int) *LaneDispatcher {
	t.Helper()
	exec, err := NewFallbackExecutor(s.strategies(), nil, nil)
	require.NoError(t, err)
	d, err := NewLaneDispatcher(LaneDispatcherOptions{
		Store:               store,
		Executor:            exec,
		OneClickConcurrency: h,
		BrowserConcurrency:  b,
	})
	require.NoError(t, err)
	return d
}

func TestLaneDispatcher_RespectsConcurrencyBounds(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	b := testutil.NewJobRequest()
	for i := range 12 {
		b.WithOneClick(fmt.Sprintf("oc%d", i), fmt.Sprintf("https://oc%d.example/u", i))
	}
	for i := range 6 {
		b.WithMailto(fmt.Sprintf("m%d", i), fmt.Sprintf("mailto:u%d@m.example", i))
	}
	for i := range 8 {
		b.WithBrowser(fmt.Sprintf("br%d", i), fmt.Sprintf("https://br%d.example/u", i))
	}
	job, err := store.CreateJob(ctx, b.Build())
	require.NoError(t, err)

	s := newScripted()
	s.delay = 10 * time.Millisecond
	d := newTestDispatcher(t, store, s, 3, 2)

	sum, err := d.Dispatch(ctx, job.ID, job.Items)
	require.NoError(t, err)

	assert.Equal(t, 26, sum.Dispatched)
	assert.Equal(t, 26, sum.Successful)
	assert.Equal(t, map[Lane]int{LaneOneClick: 12, LaneMailto: 6, LaneBrowser: 8}, sum.PerLane)
	assert.LessOrEqual(t, s.shared.peak.Load(), int32(3), "one-click and mailto share one bound")
	assert.LessOrEqual(t, s.browser.peak.Load(), int32(2))
	assert.Positive(t, s.browser.peak.Load())

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 26, got.CompletedItems)
	assert.Equal(t, got.CompletedItems, got.SuccessfulItems+got.FailedItems)
}

func TestLaneDispatcher_LanesRunConcurrently(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	job, err := store.CreateJob(ctx, testutil.NewJobRequest().
		WithOneClick("a", "https://a.example/u").
		WithBrowser("b", "https://b.example/u").
		Build())
	require.NoError(t, err)

	started := make(chan string, 2)
	release := make(chan struct{})
	s := newScripted()
	strategies := s.strategies()
	strategies.OneClick = oneClickFunc(func(context.Context, string) (core.Outcome, error) {
		started <- "one-click"
		<-release
		return core.Outcome{Success: true}, nil
	})
	strategies.Browser = browserFunc(func(context.Context, model.JobItem) (core.Outcome, error) {
		started <- "browser"
		<-release
		return core.Outcome{Success: true}, nil
	})
	exec, err := NewFallbackExecutor(strategies, nil, nil)
	require.NoError(t, err)
	d, err := NewLaneDispatcher(LaneDispatcherOptions{Store: store, Executor: exec, OneClickConcurrency: 1, BrowserConcurrency: 1})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(ctx, job.ID, job.Items)
		done <- err
	}()

	seen := map[string]bool{}
	for range 2 {
		select {
		case lane := <-started:
			seen[lane] = true
		case <-time.After(2 * time.Second):
			t.Fatal("lanes did not run concurrently")
		}
	}
	close(release)
	require.NoError(t, <-done)
	assert.True(t, seen["one-click"] && seen["browser"])
}

func TestLaneDispatcher_SkipsUnclassifiable(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	job, err := store.CreateJob(ctx, testutil.NewJobRequest().
		WithOneClick("a", "https://a.example/u").
		WithItem(model.CreateJobItem{Sender: "nowhere"}).
		Build())
	require.NoError(t, err)

	sum, err := newTestDispatcher(t, store, newScripted(), 2, 1).Dispatch(ctx, job.ID, job.Items)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Dispatched)
	assert.Equal(t, 1, sum.Skipped)

	pending, err := store.GetPendingItems(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "nowhere", pending[0].Sender)
}

func TestLaneDispatcher_StoreFaultAbortsDispatch(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	b := testutil.NewJobRequest()
	for i := range 10 {
		b.WithOneClick(fmt.Sprintf("oc%d", i), fmt.Sprintf("https://oc%d.example/u", i))
	}
	job, err := store.CreateJob(ctx, b.Build())
	require.NoError(t, err)

	dbDown := errors.New("connection reset")
	var failed atomic.Bool
	store.updateErr = func(int64) error {
		if failed.CompareAndSwap(false, true) {
			return dbDown
		}
		return nil
	}

	s := newScripted()
	s.delay = 5 * time.Millisecond
	_, err = newTestDispatcher(t, store, s, 1, 1).Dispatch(ctx, job.ID, job.Items)
	require.ErrorIs(t, err, dbDown)

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Less(t, got.CompletedItems, 9, "no new items start after a store fault")
	assert.Equal(t, got.CompletedItems, got.SuccessfulItems+got.FailedItems)
}
