// Package mailto turns List-Unsubscribe mailto targets into unsubscribe emails.
package mailto

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"

	"github.com/target/mmk-unsubscribe/internal/core"
)

const (
	DefaultSubject = "Unsubscribe"
	DefaultBody    = "Please unsubscribe me from this mailing list."

	maxErrorLen = 30
)

var (
	ErrEmptyTarget    = errors.New("empty mailto target")
	ErrInvalidAddress = errors.New("invalid mailto address")
	errNoSender       = errors.New("no mail sender configured")
)

var _ core.MailtoSend = Sender{}

// Parse splits a mailto target ("mailto:addr?subject=..&body=..", with or
// without the scheme) into a message, applying the default subject and body.
func Parse(target string) (core.MailMessage, error) {
	raw := strings.TrimSpace(target)
	if len(raw) >= len("mailto:") && strings.EqualFold(raw[:len("mailto:")], "mailto:") {
		raw = raw[len("mailto:"):]
	}
	if raw == "" {
		return core.MailMessage{}, ErrEmptyTarget
	}

	addrPart, query, _ := strings.Cut(raw, "?")
	addr, err := url.PathUnescape(addrPart)
	if err != nil {
		addr = addrPart
	}
	addr = strings.TrimSpace(addr)

	params, _ := url.ParseQuery(query)
	msg := core.MailMessage{
		To:      addr,
		Subject: firstNonEmpty(params, "subject", DefaultSubject),
		Body:    firstNonEmpty(params, "body", DefaultBody),
	}
	// RFC 6068 allows the address in a "to" header field too.
	if msg.To == "" {
		msg.To = strings.TrimSpace(params.Get("to"))
	}
	if msg.To == "" {
		return core.MailMessage{}, ErrEmptyTarget
	}
	if _, err := mail.ParseAddress(firstAddress(msg.To)); err != nil {
		return core.MailMessage{}, ErrInvalidAddress
	}
	return msg, nil
}

func firstNonEmpty(params url.Values, key, fallback string) string {
	for k, vs := range params {
		if !strings.EqualFold(k, key) {
			continue
		}
		for _, v := range vs {
			if strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	return fallback
}

func firstAddress(to string) string {
	first, _, _ := strings.Cut(to, ",")
	return strings.TrimSpace(first)
}

// Sender implements core.MailtoSend. Every problem, including a missing mail
// sender, is reported as a failed outcome.
type Sender struct{}

// Send parses target and delivers the resulting message through sender.
func (Sender) Send(ctx context.Context, target string, sender core.MailSender) (core.Outcome, error) {
	msg, err := Parse(target)
	if err != nil {
		return failed(err), nil
	}
	if sender == nil {
		return failed(errNoSender), nil
	}
	if err := sender.Send(ctx, msg); err != nil {
		return failed(err), nil
	}
	return core.Outcome{Success: true, Message: "Email sent"}, nil
}

func failed(err error) core.Outcome {
	reason := err.Error()
	if len(reason) > maxErrorLen {
		reason = reason[:maxErrorLen]
	}
	return core.Outcome{Message: "Email failed: " + reason}
}
