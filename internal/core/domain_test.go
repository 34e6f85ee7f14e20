package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in      string
		want    TransactionType
		wantErr bool
	}{
		{"INCOME", Income, false},
		{"expense", Expense, false},
		{" Income ", Income, false},
		{"", "", true},
		{"transfer", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTransactionType(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUserIDValidate(t *testing.T) {
	assert.NoError(t, UserID("alice").Validate())
	assert.ErrorIs(t, UserID("").Validate(), ErrInvalidInput)
	assert.ErrorIs(t, UserID("   ").Validate(), ErrInvalidInput)
}

func TestDateHelpers(t *testing.T) {
	t.Run("parse and format", func(t *testing.T) {
		d, err := ParseDate("2024-02-29")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-29", d.String())
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, 2, d.Month())
		assert.Equal(t, 29, d.Day())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDate("2024-13-01")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("month bounds", func(t *testing.T) {
		assert.Equal(t, "2024-02-29", LastOfMonth(2024, 2).String())
		assert.Equal(t, "2023-02-28", LastOfMonth(2023, 2).String())
		assert.Equal(t, "2024-12-31", LastOfMonth(2024, 12).String())
		assert.Equal(t, "2024-04-01", FirstOfMonth(2024, 4).String())
	})

	t.Run("today drops the clock", func(t *testing.T) {
		now := time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, NewDate(2024, 5, 6), Today(now))
	})

	t.Run("within is inclusive", func(t *testing.T) {
		start, end := NewDate(2024, 1, 1), NewDate(2024, 1, 31)
		assert.True(t, start.Within(start, end))
		assert.True(t, end.Within(start, end))
		assert.False(t, NewDate(2024, 2, 1).Within(start, end))
	})
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		D Date `json:"d"`
	}

	b, err := json.Marshal(payload{D: NewDate(2024, 3, 9)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-09"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-12-01"}`), &p))
	assert.Equal(t, NewDate(2025, 12, 1), p.D)

	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &p))
	assert.True(t, p.D.IsEmpty())

	err = json.Unmarshal([]byte(`{"d":"01/02/2025"}`), &p)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewTransactionNormalize(t *testing.T) {
	good := NewTransaction{
		Amount:      decimal.RequireFromString("10.005"),
		Date:        NewDate(2024, 1, 15),
		Category:    "  Food ",
		Description: " lunch ",
	}
	got, err := good.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "10.01", FormatAmount(got.Amount))
	assert.Equal(t, "Food", got.Category)
	assert.Equal(t, "lunch", got.Description)

	bads := map[string]NewTransaction{
		"zero amount":      {Amount: decimal.Zero, Date: NewDate(2024, 1, 1), Category: "Food"},
		"negative amount":  {Amount: decimal.NewFromInt(-5), Date: NewDate(2024, 1, 1), Category: "Food"},
		"rounds to zero":   {Amount: decimal.RequireFromString("0.004"), Date: NewDate(2024, 1, 1), Category: "Food"},
		"missing date":     {Amount: decimal.NewFromInt(5), Category: "Food"},
		"missing category": {Amount: decimal.NewFromInt(5), Date: NewDate(2024, 1, 1), Category: " "},
		"long description": {Amount: decimal.NewFromInt(5), Date: NewDate(2024, 1, 1), Category: "Food", Description: strings.Repeat("x", 201)},
	}
	for name, tx := range bads {
		t.Run(name, func(t *testing.T) {
			_, err := tx.Normalize()
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTransactionFilter(t *testing.T) {
	tx := Transaction{Date: NewDate(2024, 3, 10), Category: "Food", Type: Expense}

	assert.True(t, TransactionFilter{}.Matches(tx))
	assert.True(t, TransactionFilter{Start: NewDate(2024, 3, 10), End: NewDate(2024, 3, 10)}.Matches(tx))
	assert.False(t, TransactionFilter{Start: NewDate(2024, 3, 11)}.Matches(tx))
	assert.False(t, TransactionFilter{End: NewDate(2024, 3, 9)}.Matches(tx))
	assert.False(t, TransactionFilter{Category: "Rent"}.Matches(tx))
	assert.False(t, TransactionFilter{Type: Income}.Matches(tx))
	assert.True(t, TransactionFilter{Category: "Food", Type: Expense}.Matches(tx))

	assert.ErrorIs(t, TransactionFilter{Start: NewDate(2024, 2, 1), End: NewDate(2024, 1, 1)}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, TransactionFilter{Type: "OTHER"}.Validate(), ErrInvalidInput)
	assert.NoError(t, TransactionFilter{}.Validate())
}

func TestNewGoalNormalize(t *testing.T) {
	today := NewDate(2024, 6, 1)

	got, err := NewGoal{Name: " Car ", TargetAmount: decimal.NewFromInt(1000), TargetDate: NewDate(2025, 1, 1)}.Normalize(today)
	require.NoError(t, err)
	assert.Equal(t, "Car", got.Name)
	assert.Equal(t, today, got.StartDate)

	explicit, err := NewGoal{Name: "Car", TargetAmount: decimal.NewFromInt(1), TargetDate: NewDate(2024, 6, 2), StartDate: NewDate(2030, 1, 1)}.Normalize(today)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2030, 1, 1), explicit.StartDate, "start after target is accepted")

	_, err = NewGoal{Name: "Car", TargetAmount: decimal.NewFromInt(1), TargetDate: today}.Normalize(today)
	assert.ErrorIs(t, err, ErrInvalidInput, "target date today is not in the future")

	_, err = NewGoal{Name: "", TargetAmount: decimal.NewFromInt(1), TargetDate: NewDate(2025, 1, 1)}.Normalize(today)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewGoal{Name: "Car", TargetAmount: decimal.Zero, TargetDate: NewDate(2025, 1, 1)}.Normalize(today)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, KindInvalidInput, ErrorKind(ErrInvalidInput))
	assert.Equal(t, KindDuplicate, ErrorKind(errors.Join(errors.New("ctx"), ErrDuplicate)))
	assert.Equal(t, KindNotFound, ErrorKind(ErrNotFound))
	assert.Equal(t, KindInvalidOperation, ErrorKind(ErrInvalidOperation))
	assert.Equal(t, KindInternal, ErrorKind(errors.New("boom")))
}
