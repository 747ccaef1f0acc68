// Package mail contains simple hand-written test doubles for the mail port.
// These are lightweight and suitable for unit tests without codegen.
package mail

import (
	"context"
	"sync"

	"github.com/target/mmk-unsubscribe/internal/core"
)

var _ core.MailSender = (*RecordingSender)(nil)

// RecordingSender captures every message it is asked to send.
// Set Err to make every send fail, or SendFunc for per-message behaviour.
type RecordingSender struct {
	SendFunc func(ctx context.Context, msg core.MailMessage) error
	Err      error

	mu   sync.Mutex
	sent []core.MailMessage
}

// Send records msg and returns the configured error, if any.
func (r *RecordingSender) Send(ctx context.Context, msg core.MailMessage) error {
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()

	if r.SendFunc != nil {
		return r.SendFunc(ctx, msg)
	}
	return r.Err
}

// Sent returns a copy of every recorded message, in send order.
func (r *RecordingSender) Sent() []core.MailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.MailMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

// Count returns the number of recorded sends.
func (r *RecordingSender) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
