// Package gmail sends unsubscribe emails through the Gmail REST API.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/target/mmk-unsubscribe/internal/core"
)

const (
	defaultAPIBaseURL = "https://gmail.googleapis.com"
	sendScope         = "https://www.googleapis.com/auth/gmail.send"
	maxErrorBody      = 512
)

var _ core.MailSender = (*Sender)(nil)

// Config holds the OAuth2 credentials and endpoints for the Gmail API.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	APIBaseURL   string
	// UserID is the Gmail user the message is sent as; "me" for the token owner.
	UserID  string
	Timeout time.Duration
	// HTTPClient is the base transport for token refreshes and API calls.
	HTTPClient *http.Client
}

// Sender implements core.MailSender on top of an OAuth2-authenticated client.
type Sender struct {
	client  *http.Client
	sendURL string
}

// NewSender builds a Gmail sender. The refresh token is exchanged lazily on
// the first send and refreshed automatically afterwards.
func NewSender(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.RefreshToken) == "" {
		return nil, errors.New("gmail refresh token is required")
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		return nil, errors.New("gmail token url is required")
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if base == "" {
		base = defaultAPIBaseURL
	}
	user := strings.TrimSpace(cfg.UserID)
	if user == "" {
		user = "me"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		Scopes:       []string{sendScope},
	}

	tokenCtx := context.Background()
	if cfg.HTTPClient != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	hc := oc.Client(tokenCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	hc.Timeout = timeout

	return &Sender{
		client:  hc,
		sendURL: fmt.Sprintf("%s/gmail/v1/users/%s/messages/send", base, url.PathEscape(user)),
	}, nil
}

type sendRequest struct {
	Raw string `json:"raw"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send delivers msg as a plain-text email.
func (s *Sender) Send(ctx context.Context, msg core.MailMessage) error {
	raw, err := BuildRFC822(msg)
	if err != nil {
		return err
	}
	body, err := json.Marshal(sendRequest{Raw: base64.URLEncoding.EncodeToString(raw)})
	if err != nil {
		return fmt.Errorf("encode gmail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create gmail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeAPIError(resp)
}

func decodeAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr apiError
	if json.Unmarshal(b, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gmail send: HTTP %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("gmail send: HTTP %d", resp.StatusCode)
}

// BuildRFC822 renders msg as a UTF-8 plain-text message.
func BuildRFC822(msg core.MailMessage) ([]byte, error) {
	to := headerSafe(msg.To)
	if to == "" {
		return nil, errors.New("message recipient is required")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerSafe(msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.Body)); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return buf.Bytes(), nil
}

// headerSafe strips line breaks so values cannot inject extra headers.
func headerSafe(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.TrimSpace(v)
}
