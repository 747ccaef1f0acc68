package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/observability/metrics"
)

// Lane is an execution lane with its own concurrency bound.
type Lane string

const (
	LaneOneClick Lane = "one-click"
	LaneBrowser  Lane = "browser"
	LaneMailto   Lane = "mailto"
)

const (
	defaultOneClickConcurrency = 5
	defaultBrowserConcurrency  = 3
)

// Classify picks the lane for item. Items with neither an http URL nor a
// mailto target have no lane and are never dispatched.
func Classify(item model.JobItem) (Lane, bool) {
	switch {
	case item.HTTPURL() != "" && item.OneClick:
		return LaneOneClick, true
	case item.HTTPURL() != "":
		return LaneBrowser, true
	case item.Mailto() != "":
		return LaneMailto, true
	default:
		return "", false
	}
}

// DispatchSummary counts what a dispatch did.
type DispatchSummary struct {
	Dispatched int
	Skipped    int
	Successful int
	Failed     int
	PerLane    map[Lane]int
}

// LaneDispatcher runs pending items through their lanes. One-click and
// mailto-only items share one bound; browser items have their own.
type LaneDispatcher struct {
	store         core.JobStore
	executor      *FallbackExecutor
	oneClickLimit int64
	browserLimit  int64
	metrics       *metrics.Recorder
	logger        *slog.Logger
}

// LaneDispatcherOptions groups dependencies for LaneDispatcher.
type LaneDispatcherOptions struct {
	Store               core.JobStore     // Required
	Executor            *FallbackExecutor // Required
	OneClickConcurrency int               // Optional: defaults to 5
	BrowserConcurrency  int               // Optional: defaults to 3
	Metrics             *metrics.Recorder
	Logger              *slog.Logger
}

// NewLaneDispatcher constructs a LaneDispatcher.
func NewLaneDispatcher(opts LaneDispatcherOptions) (*LaneDispatcher, error) {
	if opts.Store == nil {
		return nil, errJobStoreRequired
	}
	if opts.Executor == nil {
		return nil, errors.New("fallback executor is required")
	}
	h := opts.OneClickConcurrency
	if h < 1 {
		h = defaultOneClickConcurrency
	}
	b := opts.BrowserConcurrency
	if b < 1 {
		b = defaultBrowserConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LaneDispatcher{
		store:         opts.Store,
		executor:      opts.Executor,
		oneClickLimit: int64(h),
		browserLimit:  int64(b),
		metrics:       opts.Metrics,
		logger:        logger.With("component", "lane_dispatcher"),
	}, nil
}

// Dispatch executes every classifiable item and records exactly one
// terminal result per item. It returns once all lanes are drained.
// A failed store write is a whole-run fault: no further items are started,
// in-flight items still finish and are recorded.
func (d *LaneDispatcher) Dispatch(ctx context.Context, jobID string, items []model.JobItem) (DispatchSummary, error) {
	sum := DispatchSummary{PerLane: make(map[Lane]int, 3)}
	shared := semaphore.NewWeighted(d.oneClickLimit)
	browser := semaphore.NewWeighted(d.browserLimit)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		lane, ok := Classify(item)
		if !ok {
			sum.Skipped++
			d.logger.DebugContext(ctx, "item has no usable target; leaving pending",
				"job_id", jobID, "item_id", item.ID)
			continue
		}
		sum.Dispatched++
		sum.PerLane[lane]++

		sem := shared
		if lane == LaneBrowser {
			sem = browser
		}

		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			out, err := d.runItem(ctx, jobID, lane, item)
			if err != nil {
				return err
			}
			mu.Lock()
			if out.Status == model.ItemStatusSuccess {
				sum.Successful++
			} else {
				sum.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return sum, err
}

// runItem executes and persists one item. Both ignore cancellation of the
// run so that a started item is always recorded.
func (d *LaneDispatcher) runItem(ctx context.Context, jobID string, lane Lane, item model.JobItem) (ItemOutcome, error) {
	done := d.metrics.LaneStarted(string(lane))
	defer done()

	detached := context.WithoutCancel(ctx)
	out := d.executor.Execute(detached, lane, item)

	if err := d.store.UpdateItem(detached, out.params(item.ID)); err != nil {
		d.logger.ErrorContext(ctx, "failed to record item result",
			"job_id", jobID, "item_id", item.ID, "lane", lane, "method", out.Method, "error", err)
		return out, fmt.Errorf("record item %d: %w", item.ID, err)
	}
	d.metrics.ItemRecorded(string(lane), string(out.Method), string(out.Status))
	d.logger.DebugContext(ctx, "item recorded",
		"job_id", jobID, "item_id", item.ID, "lane", lane, "method", out.Method, "status", out.Status)
	return out, nil
}
