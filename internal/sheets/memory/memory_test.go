package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/sheets"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterReplacesRows(t *testing.T) {
	ctx := context.Background()
	e := New()

	txs := []core.Transaction{
		{ID: 2, Amount: decimal.RequireFromString("40"), Date: core.NewDate(2024, 2, 1), Category: "Food", Type: core.Expense},
		{ID: 1, Amount: decimal.RequireFromString("100.5"), Date: core.NewDate(2024, 1, 1), Category: "Salary", Type: core.Income, Description: "pay"},
	}
	n, err := e.ExportLedger(ctx, "alice", txs)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rows := e.Rows("alice")
	assert.Equal(t, sheets.Header, rows[0])
	assert.Equal(t, []string{"2", "2024-02-01", "EXPENSE", "Food", "40.00", ""}, rows[1])
	assert.Equal(t, []string{"1", "2024-01-01", "INCOME", "Salary", "100.50", "pay"}, rows[2])
	assert.Equal(t, "60.50", rows[3][4])

	n, err = e.ExportLedger(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, e.Rows("alice"), 2)
	assert.Equal(t, 2, e.Exports())
	assert.Equal(t, []core.UserID{"alice"}, e.Owners())
}

func TestExporterFailure(t *testing.T) {
	e := New()
	boom := errors.New("quota exceeded")
	e.FailWith(boom)

	_, err := e.ExportLedger(context.Background(), "alice", nil)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, e.Owners())

	e.FailWith(nil)
	_, err = e.ExportLedger(context.Background(), "alice", nil)
	require.NoError(t, err)
}
