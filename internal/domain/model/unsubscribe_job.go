// Package model defines the core data types used throughout the unsubscribe job system.
package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// JobStatus represents the lifecycle state of an unsubscribe job.
type JobStatus string

// ItemStatus represents the state of a single unsubscribe action within a job.
type ItemStatus string

// Method names the strategy whose outcome was recorded on an item.
type Method string

const (
	// JobStatusPending indicates a job has not been run yet, or was reset for retry.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the orchestrator is executing the job's items.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates every dispatched item reached a terminal state.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the run was aborted by a whole-run fault.
	JobStatusFailed JobStatus = "failed"

	ItemStatusPending ItemStatus = "pending"
	ItemStatusSuccess ItemStatus = "success"
	ItemStatusFailed  ItemStatus = "failed"

	MethodOneClick Method = "one-click"
	MethodBrowser  Method = "browser"
	MethodMailto   Method = "mailto"
	// MethodError marks an item whose strategy raised an unexpected fault.
	MethodError Method = "error"
)

// Validation errors returned by CreateJobRequest.Validate.
var (
	ErrNoItems      = errors.New("at least one item is required")
	ErrItemNoSender = errors.New("item sender or sender_email is required")
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusRunning || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// IsTerminal reports whether s is a final job state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Valid returns true if the ItemStatus is valid.
func (s ItemStatus) Valid() bool {
	return s == ItemStatusPending || s == ItemStatusSuccess || s == ItemStatusFailed
}

// IsTerminal reports whether s is a final item state.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusSuccess || s == ItemStatusFailed
}

// Valid returns true if the Method is one of the known strategy names.
func (m Method) Valid() bool {
	return m == MethodOneClick || m == MethodBrowser || m == MethodMailto || m == MethodError
}

// Job is a durable batch of unsubscribe actions.
// CompletedItems always equals SuccessfulItems + FailedItems.
type Job struct {
	ID              string     `json:"id"                     db:"id"`
	Status          JobStatus  `json:"status"                 db:"status"`
	CreatedAt       time.Time  `json:"created_at"             db:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"   db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	TotalItems      int        `json:"total_items"            db:"total_items"`
	CompletedItems  int        `json:"completed_items"        db:"completed_items"`
	SuccessfulItems int        `json:"successful_items"       db:"successful_items"`
	FailedItems     int        `json:"failed_items"           db:"failed_items"`
	Items           []JobItem  `json:"items,omitempty"`
}

// JobItem is one unsubscribe action within a job.
type JobItem struct {
	ID                int64      `json:"id"                           db:"id"`
	JobID             string     `json:"job_id"                       db:"job_id"`
	Sender            string     `json:"sender"                       db:"sender"`
	SenderEmail       string     `json:"sender_email"                 db:"sender_email"`
	UnsubscribeURL    *string    `json:"unsubscribe_url,omitempty"    db:"unsubscribe_url"`
	UnsubscribeMailto *string    `json:"unsubscribe_mailto,omitempty" db:"unsubscribe_mailto"`
	OneClick          bool       `json:"one_click"                    db:"one_click"`
	MethodAttempted   *Method    `json:"method_attempted,omitempty"   db:"method_attempted"`
	Status            ItemStatus `json:"status"                       db:"status"`
	ErrorMessage      *string    `json:"error_message,omitempty"      db:"error_message"`
	AttemptedAt       *time.Time `json:"attempted_at,omitempty"       db:"attempted_at"`
	RetryCount        int        `json:"retry_count"                  db:"retry_count"`
}

// HTTPURL returns the item's unsubscribe URL when it is an http(s) link, or "".
func (i *JobItem) HTTPURL() string {
	if i.UnsubscribeURL == nil {
		return ""
	}
	if !IsHTTPURL(*i.UnsubscribeURL) {
		return ""
	}
	return strings.TrimSpace(*i.UnsubscribeURL)
}

// Mailto returns the item's mailto target, or "".
func (i *JobItem) Mailto() string {
	if i.UnsubscribeMailto == nil {
		return ""
	}
	return strings.TrimSpace(*i.UnsubscribeMailto)
}

// DisplaySender returns the sender name, falling back to the sender address.
func (i *JobItem) DisplaySender() string {
	if i.Sender != "" {
		return i.Sender
	}
	return i.SenderEmail
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// CreateJobItem describes one candidate unsubscribe action submitted with a new job.
type CreateJobItem struct {
	Sender            string  `json:"sender"`
	SenderEmail       string  `json:"sender_email"`
	UnsubscribeURL    *string `json:"unsubscribe_url,omitempty"`
	UnsubscribeMailto *string `json:"unsubscribe_mailto,omitempty"`
	OneClick          bool    `json:"one_click,omitempty"`
}

// CreateJobRequest represents a request to create a new unsubscribe job.
type CreateJobRequest struct {
	Items []CreateJobItem `json:"items"`
}

// Validate validates the CreateJobRequest fields. Items without a usable
// target are accepted; they are never dispatched and stay pending.
func (r *CreateJobRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	for i := range r.Items {
		if err := r.Items[i].validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}

func (it *CreateJobItem) validate() error {
	if strings.TrimSpace(it.Sender) == "" && strings.TrimSpace(it.SenderEmail) == "" {
		return ErrItemNoSender
	}
	return nil
}

// JobListOptions controls pagination for ListJobs.
type JobListOptions struct {
	Limit  int
	Offset int
}

// RetryResult reports how many failed items were reset for another pass.
type RetryResult struct {
	JobID   string `json:"job_id"`
	Retried int    `json:"retried"`
}

// ItemResult is the per-item entry of a status snapshot.
type ItemResult struct {
	ItemID  int64  `json:"item_id"`
	Sender  string `json:"sender"`
	Success bool   `json:"success"`
	Method  Method `json:"method"`
	Message string `json:"message"`
}

// JobStatusSnapshot is a polling view of a job derived from persisted state.
type JobStatusSnapshot struct {
	JobID    string       `json:"job_id"`
	Status   JobStatus    `json:"status"`
	Running  bool         `json:"running"`
	Progress int          `json:"progress"`
	Total    int          `json:"total"`
	Results  []ItemResult `json:"results"`
}

// FailedItem is a failed action surfaced for manual follow-up.
type FailedItem struct {
	ItemID            int64   `json:"item_id"`
	Sender            string  `json:"sender"`
	SenderEmail       string  `json:"sender_email"`
	UnsubscribeURL    *string `json:"unsubscribe_url,omitempty"`
	UnsubscribeMailto *string `json:"unsubscribe_mailto,omitempty"`
	Method            *Method `json:"method_attempted,omitempty"`
	ErrorMessage      *string `json:"error_message,omitempty"`
	RetryCount        int     `json:"retry_count"`
}
