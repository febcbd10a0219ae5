package source

import (
	"context"

	"neuromesh/internal/domain"
)

// AdapterType defines how an adapter interacts with its data source
type AdapterType string

const (
	// AdapterTypePolling - adapter runs on a schedule
	AdapterTypePolling AdapterType = "polling"
	// AdapterTypeOneShot - manual trigger only
	AdapterTypeOneShot AdapterType = "oneshot"
)

// AdapterConfig holds configuration for an adapter instance
type AdapterConfig struct {
	// Enabled determines if the adapter should run
	Enabled bool `json:"enabled"`
	// PollInterval for polling adapters (e.g., "30s", "5m")
	PollInterval string `json:"poll_interval,omitempty"`
}

// Report is the outcome of one adapter sync pass
type Report struct {
	// Checked is the number of cache entries examined
	Checked int `json:"checked"`
	// Findings are the integrity problems discovered
	Findings []domain.Discrepancy `json:"findings,omitempty"`
}

// Adapter defines the interface for background cache maintenance tasks
type Adapter interface {
	// Name returns the unique identifier for this adapter
	Name() string

	// Type returns how this adapter is scheduled
	Type() AdapterType

	// Start initializes the adapter (called once on startup)
	Start(ctx context.Context) error

	// Stop gracefully shuts down the adapter
	Stop() error

	// Sync examines the cache and returns a report.
	// Called on schedule for polling adapters, or manually for oneshot.
	Sync(ctx context.Context) (*Report, error)
}

// EventPublisher allows adapters to publish progress events
type EventPublisher interface {
	PublishMaintenanceEvent(eventType string, payload interface{})
}

// ProgressAdapter extends Adapter with progress reporting
type ProgressAdapter interface {
	Adapter

	// SetEventPublisher sets the event publisher for progress updates
	SetEventPublisher(pub EventPublisher)
}
