package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	goal := SavingsGoal{Name: "Trip", TargetAmount: amount("1000.00")}

	cases := []struct {
		name      string
		net       string
		remaining string
		pct       string
	}{
		{"half way", "500.00", "500.00", "50.00"},
		{"nothing yet", "0", "1000.00", "0.00"},
		{"exceeded", "2500.00", "0.00", "100.00"},
		{"exactly reached", "1000.00", "0.00", "100.00"},
		{"fraction rounds half up", "0.125", "999.88", "0.01"},
		{"net outflow", "-100.00", "1100.00", "-10.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ComputeProgress(goal, amount(tc.net))
			assert.Equal(t, tc.remaining, FormatAmount(p.RemainingAmount))
			assert.Equal(t, tc.pct, FormatAmount(p.ProgressPercentage))
			assert.False(t, p.RemainingAmount.IsNegative())
			assert.True(t, p.ProgressPercentage.LessThanOrEqual(decimal.NewFromInt(100)))
		})
	}
}

func TestComputeProgressZeroTarget(t *testing.T) {
	p := ComputeProgress(SavingsGoal{TargetAmount: decimal.Zero}, amount("10"))
	assert.True(t, p.ProgressPercentage.IsZero())
	assert.True(t, p.RemainingAmount.IsZero())
}

func TestNetFlowScenario(t *testing.T) {
	txs := []Transaction{
		{Amount: amount("600.00"), Date: NewDate(2024, 2, 1), Category: "Salary", Type: Income},
		{Amount: amount("100.00"), Date: NewDate(2024, 3, 1), Category: "Food", Type: Expense},
		{Amount: amount("50.00"), Date: NewDate(2023, 12, 31), Category: "Food", Type: Expense},
	}
	net := NetFlow(txs, NewDate(2024, 1, 1), NewDate(2024, 6, 1))
	p := ComputeProgress(SavingsGoal{TargetAmount: amount("1000.00")}, net)
	assert.Equal(t, "500.00", FormatAmount(p.CurrentProgress))
	assert.Equal(t, "500.00", FormatAmount(p.RemainingAmount))
	assert.Equal(t, "50.00", FormatAmount(p.ProgressPercentage))
}
