package mailto

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/mocks/mail"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    core.MailMessage
		wantErr error
	}{
		{
			name:   "bare address uses defaults",
			target: "unsub@example.com",
			want:   core.MailMessage{To: "unsub@example.com", Subject: DefaultSubject, Body: DefaultBody},
		},
		{
			name:   "scheme and subject",
			target: "mailto:unsub@example.com?subject=Remove%20me",
			want:   core.MailMessage{To: "unsub@example.com", Subject: "Remove me", Body: DefaultBody},
		},
		{
			name:   "uppercase scheme with subject and body",
			target: "MAILTO:list@example.org?Subject=stop&body=please+stop",
			want:   core.MailMessage{To: "list@example.org", Subject: "stop", Body: "please stop"},
		},
		{
			name:   "encoded address",
			target: "mailto:list%2Bnews@example.org",
			want:   core.MailMessage{To: "list+news@example.org", Subject: DefaultSubject, Body: DefaultBody},
		},
		{
			name:   "address in to header",
			target: "mailto:?to=list@example.org",
			want:   core.MailMessage{To: "list@example.org", Subject: DefaultSubject, Body: DefaultBody},
		},
		{name: "empty", target: "  ", wantErr: ErrEmptyTarget},
		{name: "scheme only", target: "mailto:", wantErr: ErrEmptyTarget},
		{name: "not an address", target: "mailto:not an address", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.target)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSender_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		rec := &mail.RecordingSender{}
		out, err := Sender{}.Send(ctx, "mailto:unsub@example.com?subject=bye", rec)
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, "Email sent", out.Message)
		require.Len(t, rec.Sent(), 1)
		assert.Equal(t, "bye", rec.Sent()[0].Subject)
	})

	t.Run("sender error is a failed outcome", func(t *testing.T) {
		rec := &mail.RecordingSender{Err: errors.New("quota exceeded for user account today")}
		out, err := Sender{}.Send(ctx, "unsub@example.com", rec)
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Equal(t, "Email failed: quota exceeded for user accoun", out.Message)
	})

	t.Run("nil sender", func(t *testing.T) {
		out, err := Sender{}.Send(ctx, "unsub@example.com", nil)
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Equal(t, "Email failed: no mail sender configured", out.Message)
	})

	t.Run("invalid target never reaches the sender", func(t *testing.T) {
		rec := &mail.RecordingSender{}
		out, err := Sender{}.Send(ctx, "mailto:", rec)
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Zero(t, rec.Count())
	})
}
