package store

import (
	"context"
	"errors"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

// ErrNotFound is returned when a customer id has no record. Batch
// callers treat it as a per-item skip; single-record callers surface
// it to the user. Any other store error is fatal for a run.
var ErrNotFound = errors.New("store: customer not found")

// Filter specifies criteria for listing customers.
type Filter struct {
	Segment     string `json:"segment,omitempty"`
	OptedInOnly bool   `json:"opted_in_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// Store is the persistence interface for customer records and their
// engagement history. Implementations apply the default-fill policy at
// this boundary: missing numeric fields read as 0, missing
// anomaly/ownership text fields read as the literal "None".
type Store interface {
	ListCustomers(ctx context.Context, filter Filter) ([]model.CustomerRecord, error)
	GetCustomer(ctx context.Context, id string) (*model.CustomerRecord, error)

	// LoadHistory returns the bounded, most-recent-first history
	// windows used for one classification pass.
	LoadHistory(ctx context.Context, id string) (*model.CustomerHistory, error)

	SegmentStats(ctx context.Context, segment string) (*model.SegmentStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
