package core

import (
	"context"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

// Outcome is the result of one strategy attempt. A failed outcome is an
// ordinary per-item failure; strategies report unexpected faults through
// their error return instead.
type Outcome struct {
	Success bool
	Message string
}

// OneClickHTTP performs an RFC 8058 one-click unsubscribe POST.
type OneClickHTTP interface {
	Unsubscribe(ctx context.Context, url string) (Outcome, error)
}

// BrowserAutomation opens the item's unsubscribe page in an isolated session
// and activates the first matching unsubscribe control.
type BrowserAutomation interface {
	Unsubscribe(ctx context.Context, item model.JobItem) (Outcome, error)
}

// MailtoSend parses a mailto target and sends the unsubscribe email through sender.
type MailtoSend interface {
	Send(ctx context.Context, target string, sender MailSender) (Outcome, error)
}

// MailMessage is a plain-text email produced from a mailto target.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// MailSender delivers an email through the user's mail service.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}
