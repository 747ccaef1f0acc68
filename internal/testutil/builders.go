package testutil

import (
	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates an empty JobRequestBuilder.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{req: &model.CreateJobRequest{}}
}

// WithOneClick adds an item whose http URL supports RFC 8058 one-click unsubscribe.
func (b *JobRequestBuilder) WithOneClick(sender, url string) *JobRequestBuilder {
	b.req.Items = append(b.req.Items, model.CreateJobItem{
		Sender:         sender,
		SenderEmail:    senderEmail(sender),
		UnsubscribeURL: StringPtr(url),
		OneClick:       true,
	})
	return b
}

// WithBrowser adds an item with an http URL that needs a browser visit.
func (b *JobRequestBuilder) WithBrowser(sender, url string) *JobRequestBuilder {
	b.req.Items = append(b.req.Items, model.CreateJobItem{
		Sender:         sender,
		SenderEmail:    senderEmail(sender),
		UnsubscribeURL: StringPtr(url),
	})
	return b
}

// WithMailto adds an item that can only be unsubscribed by email.
func (b *JobRequestBuilder) WithMailto(sender, mailto string) *JobRequestBuilder {
	b.req.Items = append(b.req.Items, model.CreateJobItem{
		Sender:            sender,
		SenderEmail:       senderEmail(sender),
		UnsubscribeMailto: StringPtr(mailto),
	})
	return b
}

// WithItem appends an arbitrary item.
func (b *JobRequestBuilder) WithItem(item model.CreateJobItem) *JobRequestBuilder {
	b.req.Items = append(b.req.Items, item)
	return b
}

// WithFallbackMailto sets the mailto target of the most recently added item.
func (b *JobRequestBuilder) WithFallbackMailto(mailto string) *JobRequestBuilder {
	if n := len(b.req.Items); n > 0 {
		b.req.Items[n-1].UnsubscribeMailto = StringPtr(mailto)
	}
	return b
}

// Build returns the built CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

func senderEmail(sender string) string {
	return "news@" + sender + ".example"
}

// StringPtr returns a pointer to the given string value.
func StringPtr(s string) *string {
	return &s
}
