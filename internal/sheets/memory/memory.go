// Package memory is a LedgerExporter that keeps exported sheets in
// process. The worker uses it when no spreadsheet is configured.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	tabs    map[core.UserID][][]string
	exports int
	err     error
}

var _ sheets.LedgerExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{tabs: make(map[core.UserID][][]string)}
}

// ExportLedger replaces owner's rows.
func (e *Exporter) ExportLedger(ctx context.Context, owner core.UserID, txs []core.Transaction) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rows := sheets.LedgerRows(txs)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return 0, e.err
	}
	e.tabs[owner] = rows
	e.exports++
	return len(rows), nil
}

// FailWith makes every later export return err; nil clears it.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Rows returns a copy of owner's last export.
func (e *Exporter) Rows(owner core.UserID) [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, 0, len(e.tabs[owner]))
	for _, r := range e.tabs[owner] {
		out = append(out, slices.Clone(r))
	}
	return out
}

// Owners lists every owner exported so far, sorted.
func (e *Exporter) Owners() []core.UserID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Sorted(maps.Keys(e.tabs))
}

func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
