// Package oneclick implements RFC 8058 one-click unsubscribe over HTTP.
package oneclick

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/target/mmk-unsubscribe/internal/core"
)

const (
	oneClickBody = "List-Unsubscribe=One-Click"
	maxErrorLen  = 50
)

var _ core.OneClickHTTP = (*Client)(nil)

// Config captures the one-click request behaviour.
type Config struct {
	Timeout       time.Duration
	MaxRetries    int
	BackoffFactor float64
	// BaseDelay is multiplied by BackoffFactor^attempt between attempts. Defaults to one second.
	BaseDelay time.Duration
	UserAgent string
	Client    *http.Client
}

// Client posts one-click unsubscribe requests with bounded retries.
type Client struct {
	client        *http.Client
	maxRetries    int
	backoffFactor float64
	baseDelay     time.Duration
	userAgent     string
}

// NewClient builds a one-click client. Redirects are never followed: a 3xx
// answer already counts as success.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1.5
	}
	base := cfg.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	noRedirect := *hc
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		client:        &noRedirect,
		maxRetries:    max(cfg.MaxRetries, 0),
		backoffFactor: factor,
		baseDelay:     base,
		userAgent:     cfg.UserAgent,
	}
}

// attemptResult is the classification of a single POST.
type attemptResult struct {
	outcome   core.Outcome
	retryable bool
}

// Unsubscribe posts the one-click body to url. Non-2xx answers are ordinary
// failed outcomes; the error return is reserved for faults outside the request.
func (c *Client) Unsubscribe(ctx context.Context, url string) (core.Outcome, error) {
	var last core.Outcome
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		res := c.attempt(ctx, url)
		if !res.retryable {
			return res.outcome, nil
		}
		last = res.outcome
		if attempt == c.maxRetries {
			break
		}
		if err := sleepCtx(ctx, c.delay(attempt)); err != nil {
			return core.Outcome{Message: "Canceled"}, nil
		}
	}
	return last, nil
}

func (c *Client) delay(attempt int) time.Duration {
	return time.Duration(float64(c.baseDelay) * math.Pow(c.backoffFactor, float64(attempt)))
}

func (c *Client) attempt(ctx context.Context, url string) attemptResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(oneClickBody))
	if err != nil {
		return attemptResult{outcome: core.Outcome{Message: truncate("invalid url: " + err.Error())}}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return attemptResult{outcome: core.Outcome{Message: "Timeout"}, retryable: true}
		}
		return attemptResult{outcome: core.Outcome{Message: truncate(err.Error())}, retryable: true}
	}
	_ = resp.Body.Close()

	return classifyStatus(resp.StatusCode)
}

func classifyStatus(code int) attemptResult {
	switch {
	case code == http.StatusOK || code == http.StatusAccepted || code == http.StatusNoContent:
		return attemptResult{outcome: core.Outcome{Success: true, Message: fmt.Sprintf("Success (HTTP %d)", code)}}
	case code >= 300 && code < 400:
		return attemptResult{outcome: core.Outcome{Success: true, Message: "Success (redirected)"}}
	case code >= 500:
		return attemptResult{outcome: core.Outcome{Message: fmt.Sprintf("HTTP %d", code)}, retryable: true}
	default:
		return attemptResult{outcome: core.Outcome{Message: fmt.Sprintf("HTTP %d", code)}}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string) string {
	if len(s) <= maxErrorLen {
		return s
	}
	return s[:maxErrorLen]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
