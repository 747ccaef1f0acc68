// Package browser implements unsubscribe-page automation on static HTML.
// Every item gets its own session (cookie jar and client), so units never
// share state.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

const (
	clickedMessage  = "Clicked"
	noClickMessage  = "Page loaded (manual may be needed)"
	maxErrorLen     = 50
	maxPageBytes    = 4 << 20
	candidateSelect = "button, input[type=submit], input[type=button], a[href], [role=button]"
)

// DefaultPatterns are matched case-insensitively against control labels, in priority order.
var DefaultPatterns = []string{"unsubscribe", "confirm", "opt out", "remove"}

var _ core.BrowserAutomation = (*Automation)(nil)

// Config captures session timeouts and identity.
type Config struct {
	PageLoadTimeout time.Duration
	// ElementWait bounds the request issued when a control is activated.
	ElementWait time.Duration
	UserAgent   string
	Patterns    []string
	// Transport is shared by all sessions; cookies are not.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Automation opens unsubscribe pages and activates the first matching control.
type Automation struct {
	pageLoadTimeout time.Duration
	elementWait     time.Duration
	userAgent       string
	patterns        []string
	transport       http.RoundTripper
	logger          *slog.Logger
}

// New creates an Automation with defaults applied.
func New(cfg Config) *Automation {
	a := &Automation{
		pageLoadTimeout: cfg.PageLoadTimeout,
		elementWait:     cfg.ElementWait,
		userAgent:       cfg.UserAgent,
		patterns:        cfg.Patterns,
		transport:       cfg.Transport,
		logger:          cfg.Logger,
	}
	if a.pageLoadTimeout <= 0 {
		a.pageLoadTimeout = 15 * time.Second
	}
	if a.elementWait <= 0 {
		a.elementWait = 3 * time.Second
	}
	if len(a.patterns) == 0 {
		a.patterns = DefaultPatterns
	}
	if a.transport == nil {
		a.transport = http.DefaultTransport
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("component", "browser_automation")
	return a
}

// session is one isolated browsing context.
type session struct {
	client    *http.Client
	userAgent string
}

func (a *Automation) newSession() (*session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &session{
		client:    &http.Client{Jar: jar, Transport: a.transport},
		userAgent: a.userAgent,
	}, nil
}

func (s *session) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return s.client.Do(req)
}

// Unsubscribe loads the item's URL and clicks the first visible, enabled
// control whose label matches a pattern. Success means a click happened.
func (a *Automation) Unsubscribe(ctx context.Context, item model.JobItem) (core.Outcome, error) {
	target := item.HTTPURL()
	if target == "" {
		return core.Outcome{Message: "No http unsubscribe URL"}, nil
	}

	sess, err := a.newSession()
	if err != nil {
		return core.Outcome{}, err
	}

	doc, pageURL, err := a.load(ctx, sess, target)
	if err != nil {
		return core.Outcome{Message: describe(err, "Page load timeout")}, nil
	}

	ctrl, ok := findControl(doc, a.patterns)
	if !ok {
		return core.Outcome{Message: noClickMessage}, nil
	}

	if err := a.activate(ctx, sess, pageURL, ctrl); err != nil {
		// The click happened; what the page does afterwards is out of our hands.
		a.logger.DebugContext(ctx, "post-click request failed",
			"item_id", item.ID, "url", pageURL.String(), "error", err)
	}
	return core.Outcome{Success: true, Message: clickedMessage}, nil
}

type pageError struct{ status int }

func (e *pageError) Error() string { return fmt.Sprintf("HTTP %d", e.status) }

func (a *Automation) load(ctx context.Context, sess *session, target string) (*goquery.Document, *url.URL, error) {
	lctx, cancel := context.WithTimeout(ctx, a.pageLoadTimeout)
	defer cancel()

	resp, err := sess.do(lctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &pageError{status: resp.StatusCode}
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, resp.Request.URL, nil
}

// activate performs the navigation a click on ctrl would cause.
func (a *Automation) activate(ctx context.Context, sess *session, base *url.URL, ctrl *goquery.Selection) error {
	cctx, cancel := context.WithTimeout(ctx, a.elementWait)
	defer cancel()

	nav, ok := navigationFor(base, ctrl)
	if !ok {
		return nil
	}
	resp, err := sess.do(cctx, nav.method, nav.target, nav.body, nav.contentType)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
	return resp.Body.Close()
}

func describe(err error, timeoutMsg string) string {
	var pe *pageError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return timeoutMsg
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}

// navigation is the request produced by activating a control.
type navigation struct {
	method      string
	target      string
	body        io.Reader
	contentType string
}

func navigationFor(base *url.URL, ctrl *goquery.Selection) (navigation, bool) {
	if goquery.NodeName(ctrl) == "a" {
		href, _ := ctrl.Attr("href")
		u, ok := resolveHTTP(base, href)
		if !ok {
			return navigation{}, false
		}
		return navigation{method: http.MethodGet, target: u.String()}, true
	}

	form := ctrl.Closest("form")
	if form.Length() == 0 || !submitsForm(ctrl) {
		return navigation{}, false
	}
	return formNavigation(base, form, ctrl)
}

func submitsForm(ctrl *goquery.Selection) bool {
	switch goquery.NodeName(ctrl) {
	case "button":
		t := strings.ToLower(strings.TrimSpace(ctrl.AttrOr("type", "submit")))
		return t == "submit"
	case "input":
		return strings.EqualFold(ctrl.AttrOr("type", ""), "submit")
	default:
		return false
	}
}

func formNavigation(base *url.URL, form, submitter *goquery.Selection) (navigation, bool) {
	action := strings.TrimSpace(form.AttrOr("action", ""))
	if fa, ok := submitter.Attr("formaction"); ok {
		action = strings.TrimSpace(fa)
	}
	u, ok := resolveHTTP(base, action)
	if !ok {
		return navigation{}, false
	}

	values := formValues(form)
	if name := submitter.AttrOr("name", ""); name != "" {
		values.Add(name, submitter.AttrOr("value", ""))
	}

	method := strings.ToUpper(strings.TrimSpace(form.AttrOr("method", http.MethodGet)))
	if fm, ok := submitter.Attr("formmethod"); ok {
		method = strings.ToUpper(strings.TrimSpace(fm))
	}
	if method == http.MethodPost {
		return navigation{
			method:      http.MethodPost,
			target:      u.String(),
			body:        strings.NewReader(values.Encode()),
			contentType: "application/x-www-form-urlencoded",
		}, true
	}
	u.RawQuery = values.Encode()
	return navigation{method: http.MethodGet, target: u.String()}, true
}

func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input[name], select[name], textarea[name]").Each(func(_ int, s *goquery.Selection) {
		if isDisabled(s) {
			return
		}
		name := s.AttrOr("name", "")
		switch goquery.NodeName(s) {
		case "textarea":
			values.Add(name, s.Text())
		case "select":
			opt := s.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = s.Find("option").First()
			}
			if opt.Length() > 0 {
				values.Add(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
			}
		default:
			switch strings.ToLower(s.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); checked {
					values.Add(name, s.AttrOr("value", "on"))
				}
			default:
				values.Add(name, s.AttrOr("value", ""))
			}
		}
	})
	return values
}

func resolveHTTP(base *url.URL, ref string) (*url.URL, bool) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}
	u := base.ResolveReference(r)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	u.Fragment = ""
	return u, true
}
