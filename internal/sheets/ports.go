package sheets

import (
	"context"
	"strconv"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Ports for outbound adapters.
type (
	// LedgerExporter replaces the owner's exported ledger with txs and
	// reports how many rows were written, header included.
	LedgerExporter interface {
		ExportLedger(ctx context.Context, owner core.UserID, txs []core.Transaction) (rows int, err error)
	}
)

// Header is the first row of every exported ledger.
var Header = []string{"ID", "Date", "Type", "Category", "Amount", "Description"}

// LedgerRows renders txs in the given order below Header. A final row
// carries the net flow of the whole ledger.
func LedgerRows(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs)+2)
	rows = append(rows, Header)

	net := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			net = net.Add(t.Amount)
		case core.Expense:
			net = net.Sub(t.Amount)
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.String(),
			string(t.Type),
			t.Category,
			core.FormatAmount(t.Amount),
			t.Description,
		})
	}
	return append(rows, []string{"", "", "", "Net", core.FormatAmount(net), ""})
}
