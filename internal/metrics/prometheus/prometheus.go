package prometheus

import (
	"net/http"
	"time"

	"fintrack/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements metrics.Collector for Prometheus.
type Collector struct {
	namespace string

	operations      *prometheus.CounterVec
	operationErrors *prometheus.CounterVec
	latency         *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec

	eventsPublished *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec

	exports       *prometheus.CounterVec
	exportedRows  prometheus.Counter
	exportLatency prometheus.Histogram
}

var _ metrics.Collector = (*Collector)(nil)

// NewCollector creates a Prometheus collector under the given namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		namespace: namespace,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of domain operations per component and operation",
			},
			[]string{"component", "operation"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed domain operations per error kind",
			},
			[]string{"component", "operation", "kind"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Domain operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"component", "operation"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups per cache and result",
			},
			[]string{"cache", "result"},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Ledger events handed to the broker per event and status",
			},
			[]string{"event", "status"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Spreadsheet exports per status",
			},
			[]string{"status"},
		),
		exportedRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exported_rows_total",
				Help:      "Ledger rows written to spreadsheets",
			},
		),
		exportLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Spreadsheet export latency",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.operations,
		c.operationErrors,
		c.latency,
		c.cacheLookups,
		c.eventsPublished,
		c.circuitState,
		c.exports,
		c.exportedRows,
		c.exportLatency,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Handler exposes the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func (c *Collector) RecordOperation(component, operation, kind string, duration time.Duration) {
	c.operations.WithLabelValues(component, operation).Inc()
	c.latency.WithLabelValues(component, operation).Observe(duration.Seconds())
	if kind != "" {
		c.operationErrors.WithLabelValues(component, operation, kind).Inc()
	}
}

func (c *Collector) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (c *Collector) RecordEventPublished(event string, success bool) {
	c.eventsPublished.WithLabelValues(event, status(success)).Inc()
}

func (c *Collector) RecordCircuitState(name string, state metrics.CircuitState) {
	c.circuitState.WithLabelValues(name).Set(float64(state))
}

func (c *Collector) RecordExport(success bool, rows int, duration time.Duration) {
	c.exports.WithLabelValues(status(success)).Inc()
	c.exportLatency.Observe(duration.Seconds())
	if success {
		c.exportedRows.Add(float64(rows))
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
