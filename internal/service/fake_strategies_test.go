package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

// gauge tracks the current and peak number of concurrent holders.
type gauge struct {
	cur  atomic.Int32
	peak atomic.Int32
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.cur.Add(-1) }

// scripted is a set of fake strategies whose outcomes are keyed by target.
// Unknown targets succeed.
type scripted struct {
	mu       sync.Mutex
	outcomes map[string]core.Outcome
	calls    map[string]int
	delay    time.Duration

	shared  gauge // one-click and mailto
	browser gauge
}

func newScripted() *scripted {
	return &scripted{outcomes: map[string]core.Outcome{}, calls: map[string]int{}}
}

func (s *scripted) set(target string, out core.Outcome) *scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[target] = out
	return s
}

func (s *scripted) Calls(target string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[target]
}

func (s *scripted) outcome(target string) core.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[target]++
	if out, ok := s.outcomes[target]; ok {
		return out
	}
	return core.Outcome{Success: true, Message: "ok " + target}
}

func (s *scripted) pause() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func (s *scripted) strategies() Strategies {
	return Strategies{
		OneClick: oneClickFunc(func(_ context.Context, url string) (core.Outcome, error) {
			s.shared.enter()
			defer s.shared.leave()
			s.pause()
			return s.outcome(url), nil
		}),
		Browser: browserFunc(func(_ context.Context, item model.JobItem) (core.Outcome, error) {
			s.browser.enter()
			defer s.browser.leave()
			s.pause()
			return s.outcome(item.HTTPURL()), nil
		}),
		Mailto: mailtoFunc(func(_ context.Context, target string, _ core.MailSender) (core.Outcome, error) {
			s.shared.enter()
			defer s.shared.leave()
			s.pause()
			return s.outcome(target), nil
		}),
	}
}

type oneClickFunc func(ctx context.Context, url string) (core.Outcome, error)

func (f oneClickFunc) Unsubscribe(ctx context.Context, url string) (core.Outcome, error) {
	return f(ctx, url)
}

type browserFunc func(ctx context.Context, item model.JobItem) (core.Outcome, error)

func (f browserFunc) Unsubscribe(ctx context.Context, item model.JobItem) (core.Outcome, error) {
	return f(ctx, item)
}

type mailtoFunc func(ctx context.Context, target string, sender core.MailSender) (core.Outcome, error)

func (f mailtoFunc) Send(ctx context.Context, target string, sender core.MailSender) (core.Outcome, error) {
	return f(ctx, target, sender)
}
