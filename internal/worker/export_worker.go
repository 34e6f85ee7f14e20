package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// ExportConfig holds configuration for the export worker
type ExportConfig struct {
	// FullExportInterval is how often every owner's ledger is re-exported
	// as a backstop for lost events (default: 1h, <=0 disables).
	FullExportInterval time.Duration

	// ExportTimeout bounds a single owner export (default: 30s).
	ExportTimeout time.Duration
}

func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		FullExportInterval: time.Hour,
		ExportTimeout:      30 * time.Second,
	}
}

// ExportWorker mirrors users' ledgers into a spreadsheet. Events only name
// the owner; the ledger is always re-read from the store.
type ExportWorker struct {
	ledger   services.TransactionRepository
	exporter sheets.LedgerExporter
	config   ExportConfig
	logger   *log.Logger
	metrics  metrics.Collector

	// exports run one at a time so a periodic pass and an event for the
	// same owner cannot interleave their writes
	exportMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(ledger services.TransactionRepository, exporter sheets.LedgerExporter, config ExportConfig, logger *log.Logger, collector metrics.Collector) *ExportWorker {
	if config.ExportTimeout <= 0 {
		config.ExportTimeout = DefaultExportConfig().ExportTimeout
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &ExportWorker{
		ledger:   ledger,
		exporter: exporter,
		config:   config,
		logger:   logger.WithComponent(log.ComponentWorker),
		metrics:  metrics.OrNoOp(collector),
	}
}

// HandleLedgerEvent re-exports the ledger of the event's owner. It
// matches the amqp consumer handler signature.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	owner := core.UserID(evt.Owner)
	if err := owner.Validate(); err != nil {
		return fmt.Errorf("event %s: %w", evt.ID, err)
	}

	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldEventID, evt.ID,
		log.FieldType, evt.Type,
		log.FieldUserID, owner)

	return w.ExportOwner(ctx, owner)
}

// ExportOwner writes owner's complete ledger, newest first.
func (w *ExportWorker) ExportOwner(ctx context.Context, owner core.UserID) (err error) {
	w.exportMu.Lock()
	defer w.exportMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.config.ExportTimeout)
	defer cancel()

	start := time.Now()
	rows := 0
	defer func() {
		w.metrics.RecordExport(err == nil, rows, time.Since(start))
	}()

	txs, err := w.ledger.ListTransactions(ctx, owner, core.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("load ledger of %s: %w", owner, err)
	}
	rows, err = w.exporter.ExportLedger(ctx, owner, txs)
	if err != nil {
		w.logger.ErrorContext(ctx, "Ledger export failed", log.FieldUserID, owner, log.FieldError, err)
		return fmt.Errorf("export ledger of %s: %w", owner, err)
	}

	w.logger.InfoContext(ctx, "Ledger exported",
		log.FieldUserID, owner,
		log.FieldRows, rows,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// ExportAll re-exports every owner that has at least one transaction. It
// keeps going past failures and returns them joined.
func (w *ExportWorker) ExportAll(ctx context.Context) (int, error) {
	owners, err := w.ledger.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list owners: %w", err)
	}

	var (
		errs     []error
		exported int
	)
	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := w.ExportOwner(ctx, owner); err != nil {
			errs = append(errs, err)
			continue
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Full export completed",
		"owners", len(owners),
		"exported", exported,
		"errors", len(errs))
	return exported, errors.Join(errs...)
}

// Start runs a full export immediately and then on every interval until
// Stop or ctx ends. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx, w.stopCh, w.doneCh)

	w.logger.InfoContext(ctx, "Export worker started", "interval", w.config.FullExportInterval)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to end.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Export worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	w.exportAllLogged(ctx)

	if w.config.FullExportInterval <= 0 {
		select {
		case <-stopCh:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(w.config.FullExportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.exportAllLogged(ctx)
		}
	}
}

func (w *ExportWorker) exportAllLogged(ctx context.Context) {
	if _, err := w.ExportAll(ctx); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "Full export failed", log.FieldError, err)
	}
}
