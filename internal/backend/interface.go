// Package backend assembles the storage, event and export backends a
// process runs with.
package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
)

// Factory builds the store side of a process from its Config.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendResult is what CreateBackend hands back. Cleanup closes the event
// client first, then the store.
type BackendResult struct {
	Store services.Store
	// Events is nil when no broker is configured or reachable.
	Events  *amqp.Client
	Cleanup func() error
}

// Publisher exposes Events as a services.EventPublisher. It is a true nil
// interface when events are off, so services skip publishing.
func (r *BackendResult) Publisher() services.EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}
