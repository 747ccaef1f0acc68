// Package core defines the ports of the unsubscribe job system: the job store,
// the execution strategies and the run lock. Services depend on these
// interfaces, adapters implement them.
package core

import (
	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

// CreateJobRequest represents a request to create a new job (re-exported from the model package).
// This is re-exported here for use in HTTP handlers to avoid direct coupling to the model package.
type CreateJobRequest = model.CreateJobRequest

// CreateJobItem is one item of a CreateJobRequest (re-exported from the model package).
type CreateJobItem = model.CreateJobItem
