package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/observability/metrics"
)

const (
	mailtoAlsoFailedSuffix = " (mailto also failed)"
	maxFaultMessageLen     = 200
)

// Strategies bundles the execution strategies an item can be attempted with.
// Mail may be nil, in which case every mailto attempt fails.
type Strategies struct {
	OneClick core.OneClickHTTP
	Browser  core.BrowserAutomation
	Mailto   core.MailtoSend
	Mail     core.MailSender
}

func (s Strategies) validate() error {
	switch {
	case s.OneClick == nil:
		return errors.New("one-click strategy is required")
	case s.Browser == nil:
		return errors.New("browser strategy is required")
	case s.Mailto == nil:
		return errors.New("mailto strategy is required")
	}
	return nil
}

// ItemOutcome is the single terminal result recorded for an item.
type ItemOutcome struct {
	Status  model.ItemStatus
	Method  model.Method
	Message string
}

func (o ItemOutcome) params(itemID int64) core.UpdateItemParams {
	msg := o.Message
	return core.UpdateItemParams{ItemID: itemID, Status: o.Status, Method: o.Method, ErrorMessage: &msg}
}

// step is one strategy in an item's plan.
type step struct {
	method model.Method
	run    func(ctx context.Context) (core.Outcome, error)
}

// FallbackExecutor runs an item's ordered strategy plan, moving to the next
// strategy only when the previous one failed.
type FallbackExecutor struct {
	strategies Strategies
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewFallbackExecutor creates an executor over the given strategies.
func NewFallbackExecutor(s Strategies, rec *metrics.Recorder, logger *slog.Logger) (*FallbackExecutor, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackExecutor{strategies: s, metrics: rec, logger: logger.With("component", "fallback_executor")}, nil
}

// plan returns the ordered steps for item in lane: the lane's primary
// strategy, then mailto when the item has a mailto target and the primary
// is not mailto already.
func (e *FallbackExecutor) plan(lane Lane, item model.JobItem) []step {
	mailtoStep := step{method: model.MethodMailto, run: func(ctx context.Context) (core.Outcome, error) {
		return e.strategies.Mailto.Send(ctx, item.Mailto(), e.strategies.Mail)
	}}

	var primary step
	switch lane {
	case LaneOneClick:
		url := item.HTTPURL()
		primary = step{method: model.MethodOneClick, run: func(ctx context.Context) (core.Outcome, error) {
			return e.strategies.OneClick.Unsubscribe(ctx, url)
		}}
	case LaneBrowser:
		primary = step{method: model.MethodBrowser, run: func(ctx context.Context) (core.Outcome, error) {
			return e.strategies.Browser.Unsubscribe(ctx, item)
		}}
	default:
		return []step{mailtoStep}
	}

	if item.Mailto() == "" {
		return []step{primary}
	}
	return []step{primary, mailtoStep}
}

// Execute attempts item through its plan and returns the one outcome to persist.
// A fault (error or panic) in either strategy yields method "error" with the
// fault's description.
func (e *FallbackExecutor) Execute(ctx context.Context, lane Lane, item model.JobItem) ItemOutcome {
	steps := e.plan(lane, item)

	primary := steps[0]
	out, err := e.attempt(ctx, primary)
	if err != nil {
		e.logger.WarnContext(ctx, "strategy fault",
			"job_id", item.JobID, "item_id", item.ID, "method", primary.method, "error", err)
		return ItemOutcome{Status: model.ItemStatusFailed, Method: model.MethodError, Message: faultMessage(err)}
	}
	if out.Success {
		return ItemOutcome{Status: model.ItemStatusSuccess, Method: primary.method, Message: out.Message}
	}
	if len(steps) == 1 {
		return ItemOutcome{Status: model.ItemStatusFailed, Method: primary.method, Message: out.Message}
	}

	fallback := steps[1]
	fb, err := e.attempt(ctx, fallback)
	if err != nil {
		e.logger.WarnContext(ctx, "fallback strategy fault",
			"job_id", item.JobID, "item_id", item.ID, "method", fallback.method, "error", err)
		return ItemOutcome{Status: model.ItemStatusFailed, Method: model.MethodError, Message: faultMessage(err)}
	}
	if fb.Success {
		return ItemOutcome{Status: model.ItemStatusSuccess, Method: fallback.method, Message: fb.Message}
	}
	return ItemOutcome{
		Status:  model.ItemStatusFailed,
		Method:  primary.method,
		Message: out.Message + mailtoAlsoFailedSuffix,
	}
}

// attempt runs one step, converting a panic into an error.
func (e *FallbackExecutor) attempt(ctx context.Context, s step) (out core.Outcome, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = core.Outcome{}, fmt.Errorf("panic: %v", r)
		}
		e.metrics.StrategyAttempt(string(s.method), attemptResult(out, err), time.Since(start))
	}()
	return s.run(ctx)
}

func attemptResult(out core.Outcome, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case out.Success:
		return metrics.ResultSuccess
	default:
		return metrics.ResultFailure
	}
}

func faultMessage(err error) string {
	msg := "Unexpected error: " + err.Error()
	if len(msg) > maxFaultMessageLen {
		msg = msg[:maxFaultMessageLen]
	}
	return msg
}
