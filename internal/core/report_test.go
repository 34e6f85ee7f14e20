package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregateMonthlyScenario(t *testing.T) {
	start, end, err := MonthRange(2024, 1)
	require.NoError(t, err)

	txs := []Transaction{
		{Amount: amount("500.00"), Date: NewDate(2024, 1, 1), Category: "Rent", Type: Expense},
		{Amount: amount("500.00"), Date: NewDate(2024, 1, 31), Category: "Rent", Type: Expense},
		{Amount: amount("2000.00"), Date: NewDate(2024, 1, 15), Category: "Salary", Type: Income},
		{Amount: amount("99.00"), Date: NewDate(2024, 2, 1), Category: "Food", Type: Expense},
	}

	r := Aggregate(txs, start, end)
	require.Len(t, r.Expense, 1)
	require.Len(t, r.Income, 1)
	assert.Equal(t, "1000.00", FormatAmount(r.Expense["Rent"]))
	assert.Equal(t, "2000.00", FormatAmount(r.Income["Salary"]))
	assert.Equal(t, "1000.00", FormatAmount(r.NetSavings))
	_, hasFood := r.Expense["Food"]
	assert.False(t, hasFood, "out-of-range category must be omitted")
}

func TestAggregateEmpty(t *testing.T) {
	start, end, err := MonthRange(2024, 3)
	require.NoError(t, err)

	r := Aggregate(nil, start, end)
	assert.Empty(t, r.Income)
	assert.Empty(t, r.Expense)
	assert.True(t, r.NetSavings.IsZero())
}

func TestAggregateExactDecimals(t *testing.T) {
	start, end, _ := YearRange(2024)
	var txs []Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, Transaction{Amount: amount("0.10"), Date: NewDate(2024, 5, 1), Category: "Food", Type: Expense})
	}
	txs = append(txs, Transaction{Amount: amount("1.00"), Date: NewDate(2024, 5, 2), Category: "Salary", Type: Income})

	r := Aggregate(txs, start, end)
	assert.True(t, r.Expense["Food"].Equal(amount("1")))
	assert.True(t, r.NetSavings.IsZero())

	sumIncome, sumExpense := decimal.Zero, decimal.Zero
	for _, v := range r.Income {
		sumIncome = sumIncome.Add(v)
	}
	for _, v := range r.Expense {
		sumExpense = sumExpense.Add(v)
	}
	assert.True(t, r.NetSavings.Equal(sumIncome.Sub(sumExpense)))
}

func TestRanges(t *testing.T) {
	s, e, err := MonthRange(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", s.String())
	assert.Equal(t, "2024-02-29", e.String())

	s, e, err = YearRange(2023)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", s.String())
	assert.Equal(t, "2023-12-31", e.String())

	for _, m := range []int{0, 13, -1} {
		_, _, err := MonthRange(2024, m)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	_, _, err = YearRange(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
