package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

type recorder struct {
	mu       sync.Mutex
	requests []string
	forms    []string
	cookies  []string
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = req.ParseForm()
	r.requests = append(r.requests, req.Method+" "+req.URL.Path)
	r.forms = append(r.forms, req.Form.Encode())
	c, err := req.Cookie("sid")
	if err == nil {
		r.cookies = append(r.cookies, c.Value)
	} else {
		r.cookies = append(r.cookies, "")
	}
}

func (r *recorder) snapshot() ([]string, []string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...), append([]string(nil), r.forms...), append([]string(nil), r.cookies...)
}

func servePage(t *testing.T, html string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	var sid atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: string(rune('0' + sid.Add(1))), Path: "/"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("<p>done</p>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func itemFor(url string) model.JobItem {
	return model.JobItem{ID: 7, Sender: "Shop", UnsubscribeURL: &url}
}

func newAutomation() *Automation {
	return New(Config{PageLoadTimeout: 2 * time.Second, ElementWait: time.Second, UserAgent: "test-agent"})
}

func TestAutomation_SubmitsFormButton(t *testing.T) {
	srv, rec := servePage(t, `<html><body>
		<form method="post" action="/confirm">
			<input type="hidden" name="token" value="abc">
			<input type="email" name="email" value="me@example.com">
			<button type="submit" name="action" value="unsub">Unsubscribe</button>
		</form></body></html>`)

	out, err := newAutomation().Unsubscribe(context.Background(), itemFor(srv.URL+"/page"))
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "Clicked", out.Message)

	reqs, forms, cookies := rec.snapshot()
	require.Equal(t, []string{"GET /page", "POST /confirm"}, reqs)
	assert.Equal(t, "action=unsub&email=me%40example.com&token=abc", forms[1])
	assert.Equal(t, "1", cookies[1], "session cookie is carried to the click")
}

func TestAutomation_PatternPriority(t *testing.T) {
	srv, rec := servePage(t, `<html><body>
		<a href="/remove">Remove me from this list</a>
		<a href="/confirm">Confirm</a>
		<a href="/unsub" style="display: none">Unsubscribe</a>
		<button disabled>Unsubscribe</button>
	</body></html>`)

	out, err := newAutomation().Unsubscribe(context.Background(), itemFor(srv.URL+"/page"))
	require.NoError(t, err)
	assert.True(t, out.Success)

	reqs, _, _ := rec.snapshot()
	assert.Equal(t, []string{"GET /page", "GET /confirm"}, reqs, "hidden and disabled unsubscribe controls are skipped")
}

func TestAutomation_NoMatch(t *testing.T) {
	srv, rec := servePage(t, `<html><body><p>Manage your preferences</p><a href="/home">Home</a></body></html>`)

	out, err := newAutomation().Unsubscribe(context.Background(), itemFor(srv.URL+"/page"))
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Page loaded (manual may be needed)", out.Message)
	reqs, _, _ := rec.snapshot()
	assert.Len(t, reqs, 1)
}

func TestAutomation_ClickCountsEvenWhenFollowUpFails(t *testing.T) {
	srv, _ := servePage(t, `<a href="/broken">Opt   Out</a>`)

	out, err := newAutomation().Unsubscribe(context.Background(), itemFor(srv.URL+"/page"))
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestAutomation_SessionsAreIsolated(t *testing.T) {
	srv, rec := servePage(t, `<a href="/done">Unsubscribe</a>`)
	a := newAutomation()

	for range 2 {
		out, err := a.Unsubscribe(context.Background(), itemFor(srv.URL+"/page"))
		require.NoError(t, err)
		require.True(t, out.Success)
	}

	reqs, _, cookies := rec.snapshot()
	require.Len(t, reqs, 4)
	assert.Empty(t, cookies[0])
	assert.Equal(t, "1", cookies[1])
	assert.Empty(t, cookies[2], "second session starts without cookies")
	assert.Equal(t, "2", cookies[3])
}

func TestAutomation_PageErrors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	out, err := newAutomation().Unsubscribe(context.Background(), itemFor(notFound.URL+"/gone"))
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "HTTP 404", out.Message)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	a := New(Config{PageLoadTimeout: 50 * time.Millisecond})
	out, err = a.Unsubscribe(context.Background(), itemFor(slow.URL))
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Page load timeout", out.Message)

	out, err = a.Unsubscribe(context.Background(), model.JobItem{Sender: "x"})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestFindControl(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		matched bool
	}{
		{
			name:    "input value",
			html:    `<input type="submit" value="UNSUBSCRIBE">`,
			want:    "UNSUBSCRIBE",
			matched: true,
		},
		{
			name:    "role button",
			html:    `<div role="button" id="x">Opt out</div>`,
			want:    "Opt out",
			matched: true,
		},
		{
			name:    "aria label",
			html:    `<button aria-label="Unsubscribe from all">X</button>`,
			want:    "X",
			matched: true,
		},
		{
			name: "hidden ancestor",
			html: `<div hidden><button>Unsubscribe</button></div>`,
		},
		{
			name: "disabled fieldset",
			html: `<form><fieldset disabled><button>Unsubscribe</button></fieldset></form>`,
		},
		{
			name: "hidden input",
			html: `<input type="hidden" value="unsubscribe">`,
		},
		{
			name: "plain text is not clickable",
			html: `<p>unsubscribe</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)
			s, ok := findControl(doc, DefaultPatterns)
			assert.Equal(t, tt.matched, ok)
			if ok {
				got := s.AttrOr("value", "")
				if got == "" {
					got = strings.TrimSpace(s.Text())
				}
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
