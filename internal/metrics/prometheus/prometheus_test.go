package prometheus

import (
	"testing"
	"time"

	"fintrack/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsOperations(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("fintrack_test")
	require.NoError(t, c.Register(registry))

	c.RecordOperation("ledger", "create", "", 3*time.Millisecond)
	c.RecordOperation("ledger", "create", "invalid_input", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("ledger", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operationErrors.WithLabelValues("ledger", "create", "invalid_input")))
}

func TestCollectorRecordsEventsAndExports(t *testing.T) {
	c := NewCollector("fintrack_test")

	c.RecordEventPublished("transaction.created", true)
	c.RecordEventPublished("transaction.created", false)
	c.RecordCircuitState("amqp", metrics.CircuitOpen)
	c.RecordExport(true, 12, time.Second)
	c.RecordExport(false, 0, time.Second)
	c.RecordCacheLookup("default_categories", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.eventsPublished.WithLabelValues("transaction.created", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.circuitState.WithLabelValues("amqp")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.exportedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("default_categories", "hit")))
}

func TestRegisterTwiceFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("fintrack_test")
	require.NoError(t, c.Register(registry))
	assert.Error(t, c.Register(registry))
}
