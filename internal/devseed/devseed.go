// Package devseed creates a demo unsubscribe job for local development.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

// DefaultBaseURL points at a local fixture server that serves unsubscribe pages.
const DefaultBaseURL = "http://localhost:8089"

// JobCreator is the part of the job store the seeder needs.
type JobCreator interface {
	CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
}

// Options configures Run.
type Options struct {
	// BaseURL prefixes every http unsubscribe link. Defaults to DefaultBaseURL.
	BaseURL string
	Logger  *slog.Logger
}

// Run creates one pending job that exercises every lane: one-click, browser
// with and without a mailto fallback, mailto-only, and an item without targets.
func Run(ctx context.Context, store JobCreator, opts Options) (*model.Job, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	job, err := store.CreateJob(ctx, &model.CreateJobRequest{Items: demoItems(base)})
	if err != nil {
		return nil, fmt.Errorf("create demo job: %w", err)
	}
	logger.InfoContext(ctx, "created demo job", "job_id", job.ID, "total_items", job.TotalItems)
	return job, nil
}

func demoItems(base string) []model.CreateJobItem {
	return []model.CreateJobItem{
		{
			Sender:         "Weekly Deals",
			SenderEmail:    "deals@shop.example",
			UnsubscribeURL: stringPtr(base + "/one-click/deals"),
			OneClick:       true,
		},
		{
			Sender:            "Daily Digest",
			SenderEmail:       "digest@news.example",
			UnsubscribeURL:    stringPtr(base + "/pages/digest"),
			UnsubscribeMailto: stringPtr("mailto:leave@news.example?subject=Unsubscribe"),
		},
		{
			Sender:         "Club Updates",
			SenderEmail:    "updates@club.example",
			UnsubscribeURL: stringPtr(base + "/pages/club"),
		},
		{
			Sender:            "Old Newsletter",
			SenderEmail:       "letters@old.example",
			UnsubscribeMailto: stringPtr("mailto:unsubscribe@old.example"),
		},
		{
			SenderEmail: "noreply@unknown.example",
		},
	}
}

func stringPtr(s string) *string { return &s }
