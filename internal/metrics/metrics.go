// Package metrics defines the instrumentation hooks used across the
// services, the event publisher and the export worker.
package metrics

import "time"

// Collector receives measurements. Implementations export them to a
// backend such as Prometheus.
type Collector interface {
	// Domain operations. kind is empty on success, otherwise one of the
	// core.Kind* labels.
	RecordOperation(component, operation, kind string, duration time.Duration)

	// Category defaults cache.
	RecordCacheLookup(cache string, hit bool)

	// Ledger events.
	RecordEventPublished(event string, success bool)
	RecordCircuitState(name string, state CircuitState)

	// Spreadsheet export.
	RecordExport(success bool, rows int, duration time.Duration)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards everything. It is the default when metrics are
// disabled.
type NoOpCollector struct{}

func (NoOpCollector) RecordOperation(component, operation, kind string, duration time.Duration) {}
func (NoOpCollector) RecordCacheLookup(cache string, hit bool)                                 {}
func (NoOpCollector) RecordEventPublished(event string, success bool)                          {}
func (NoOpCollector) RecordCircuitState(name string, state CircuitState)                       {}
func (NoOpCollector) RecordExport(success bool, rows int, duration time.Duration)              {}

// OrNoOp returns c, or a NoOpCollector when c is nil.
func OrNoOp(c Collector) Collector {
	if c == nil {
		return NoOpCollector{}
	}
	return c
}
