package services

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// instrument records latency and failure kind for one service component.
type instrument struct {
	component string
	logger    *log.Logger
	metrics   metrics.Collector
}

func newInstrument(component string, logger *log.Logger, collector metrics.Collector) instrument {
	if logger == nil {
		logger = log.Nop()
	}
	return instrument{
		component: component,
		logger:    logger.WithComponent(component),
		metrics:   metrics.OrNoOp(collector),
	}
}

// observe is deferred as `defer s.observe(ctx, op, time.Now(), &err)`.
// Caller-caused failures are logged at debug, anything else at error.
func (i instrument) observe(ctx context.Context, op string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	kind := core.ErrorKind(err)
	i.metrics.RecordOperation(i.component, op, kind, time.Since(start))

	switch kind {
	case "":
	case core.KindInternal:
		i.logger.ErrorContext(ctx, "Operation failed", log.FieldOperation, op, log.FieldError, err)
	default:
		i.logger.DebugContext(ctx, "Operation rejected", log.FieldOperation, op, log.FieldErrorKind, kind, log.FieldError, err)
	}
}

// publishBestEffort hands evt to the publisher after a commit. Failures
// are logged and never returned: the write already succeeded.
func publishBestEffort(ctx context.Context, logger *log.Logger, publisher EventPublisher, e *amqp.LedgerEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishLedgerEvent(ctx, e); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, e.ID,
			log.FieldType, e.Type,
			log.FieldUserID, e.Owner,
			log.FieldError, err)
	}
}
