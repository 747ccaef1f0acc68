// Package mocks provides mock implementations for testing the unsubscribe job system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the core ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockStore := mocks.NewMockJobStore(ctrl)
//	mockStore.EXPECT().GetJob(gomock.Any(), jobID).Return(job, nil)
package mocks

// Generate mock for JobStore interface from internal/core package.
// This creates MockJobStore with methods for all JobStore interface methods:
// CreateJob, GetJob, ListJobs, StartJob, UpdateItem, CompleteJob, GetPendingItems,
// ListFailedItems, ResetFailedItems, GetActiveJob
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_store_mock.go github.com/target/mmk-unsubscribe/internal/core JobStore

// Generate mocks for the execution strategy ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=strategies_mock.go github.com/target/mmk-unsubscribe/internal/core OneClickHTTP,BrowserAutomation,MailtoSend,MailSender
