// Package storetest holds the behaviour every services.Store must share.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) services.Store) {
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("category duplicate", func(t *testing.T) { testCategoryDuplicate(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("transaction filters", func(t *testing.T) { testTransactionFilters(t, newStore(t)) })
	t.Run("owner isolation", func(t *testing.T) { testOwnerIsolation(t, newStore(t)) })
	t.Run("goals", func(t *testing.T) { testGoals(t, newStore(t)) })
	t.Run("rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

func tx(owner core.UserID, amount string, date core.Date, category string, typ core.TransactionType) core.Transaction {
	return core.Transaction{
		Owner:    owner,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Category: category,
		Type:     typ,
	}
}

func testCategories(t *testing.T, s services.Store) {
	ctx := context.Background()
	cats := s.Categories()

	n, err := cats.CountCategories(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = cats.InsertCategory(ctx, core.Category{Name: "Salary", Type: core.Income})
	require.NoError(t, err)
	custom, err := cats.InsertCategory(ctx, core.Category{Name: "Freelance", Type: core.Income, IsCustom: true, Owner: "alice"})
	require.NoError(t, err)
	assert.NotZero(t, custom.ID)

	got, err := cats.FindCategory(ctx, "alice", "Freelance")
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	_, err = cats.FindCategory(ctx, "bob", "Freelance")
	assert.ErrorIs(t, err, core.ErrNotFound)

	defaults, err := cats.ListCategories(ctx, "")
	require.NoError(t, err)
	require.Len(t, defaults, 1)
	assert.Equal(t, "Salary", defaults[0].Name)
	assert.False(t, defaults[0].IsCustom)

	require.NoError(t, cats.DeleteCategory(ctx, "alice", "Freelance"))
	assert.ErrorIs(t, cats.DeleteCategory(ctx, "alice", "Freelance"), core.ErrNotFound)
}

func testCategoryDuplicate(t *testing.T, s services.Store) {
	ctx := context.Background()
	cats := s.Categories()

	_, err := cats.InsertCategory(ctx, core.Category{Name: "Gym", Type: core.Expense, IsCustom: true, Owner: "alice"})
	require.NoError(t, err)

	_, err = cats.InsertCategory(ctx, core.Category{Name: "Gym", Type: core.Expense, IsCustom: true, Owner: "alice"})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	// Same name in another scope is fine.
	_, err = cats.InsertCategory(ctx, core.Category{Name: "Gym", Type: core.Expense, IsCustom: true, Owner: "bob"})
	assert.NoError(t, err)
	_, err = cats.InsertCategory(ctx, core.Category{Name: "Gym", Type: core.Expense})
	assert.NoError(t, err)
}

func testTransactions(t *testing.T, s services.Store) {
	ctx := context.Background()
	txs := s.Transactions()

	created, err := txs.InsertTransaction(ctx, tx("alice", "12.50", core.NewDate(2024, 1, 10), "Food", core.Expense))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := txs.FindTransaction(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, core.NewDate(2024, 1, 10), got.Date)
	assert.Equal(t, core.Expense, got.Type)

	got.Amount = decimal.RequireFromString("99.99")
	got.Description = "dinner"
	got.Category = "Salary"
	got.Type = core.Income
	require.NoError(t, txs.UpdateTransaction(ctx, got))

	updated, err := txs.FindTransaction(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "99.99", core.FormatAmount(updated.Amount))
	assert.Equal(t, "dinner", updated.Description)
	assert.Equal(t, core.Income, updated.Type)

	n, err := txs.CountTransactionsByCategory(ctx, "alice", "Salary")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	owners, err := txs.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.UserID{"alice"}, owners)

	require.NoError(t, txs.DeleteTransaction(ctx, "alice", created.ID))
	_, err = txs.FindTransaction(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, txs.DeleteTransaction(ctx, "alice", created.ID), core.ErrNotFound)
	assert.ErrorIs(t, txs.UpdateTransaction(ctx, got), core.ErrNotFound)
}

func testTransactionFilters(t *testing.T, s services.Store) {
	ctx := context.Background()
	txs := s.Transactions()

	seed := []core.Transaction{
		tx("alice", "10", core.NewDate(2024, 1, 5), "Food", core.Expense),
		tx("alice", "20", core.NewDate(2024, 2, 5), "Rent", core.Expense),
		tx("alice", "30", core.NewDate(2024, 2, 5), "Salary", core.Income),
		tx("alice", "40", core.NewDate(2024, 3, 5), "Food", core.Expense),
	}
	var ids []int64
	for _, tr := range seed {
		c, err := txs.InsertTransaction(ctx, tr)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	all, err := txs.ListTransactions(ctx, "alice", core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{ids[3], ids[2], ids[1], ids[0]}, idsOf(all), "date desc, then id desc")

	cases := []struct {
		name   string
		filter core.TransactionFilter
		want   []int64
	}{
		{"start", core.TransactionFilter{Start: core.NewDate(2024, 2, 5)}, []int64{ids[3], ids[2], ids[1]}},
		{"end inclusive", core.TransactionFilter{End: core.NewDate(2024, 2, 5)}, []int64{ids[2], ids[1], ids[0]}},
		{"range", core.TransactionFilter{Start: core.NewDate(2024, 2, 1), End: core.NewDate(2024, 2, 29)}, []int64{ids[2], ids[1]}},
		{"category", core.TransactionFilter{Category: "Food"}, []int64{ids[3], ids[0]}},
		{"type", core.TransactionFilter{Type: core.Income}, []int64{ids[2]}},
		{"conjunctive", core.TransactionFilter{Category: "Food", Start: core.NewDate(2024, 2, 1)}, []int64{ids[3]}},
		{"no match", core.TransactionFilter{Category: "Food", Type: core.Income}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := txs.ListTransactions(ctx, "alice", tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, idsOf(got))
		})
	}
}

func testOwnerIsolation(t *testing.T, s services.Store) {
	ctx := context.Background()
	txs := s.Transactions()

	mine, err := txs.InsertTransaction(ctx, tx("alice", "5", core.NewDate(2024, 1, 1), "Food", core.Expense))
	require.NoError(t, err)
	_, err = txs.InsertTransaction(ctx, tx("bob", "7", core.NewDate(2024, 1, 1), "Food", core.Expense))
	require.NoError(t, err)

	_, err = txs.FindTransaction(ctx, "bob", mine.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, txs.DeleteTransaction(ctx, "bob", mine.ID), core.ErrNotFound)

	bobs, err := txs.ListTransactions(ctx, "bob", core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, core.UserID("bob"), bobs[0].Owner)
}

func testGoals(t *testing.T, s services.Store) {
	ctx := context.Background()
	goals := s.Goals()

	g, err := goals.InsertGoal(ctx, core.SavingsGoal{
		Owner:        "alice",
		Name:         "Bike",
		TargetAmount: decimal.RequireFromString("800"),
		TargetDate:   core.NewDate(2030, 1, 1),
		StartDate:    core.NewDate(2024, 1, 1),
	})
	require.NoError(t, err)
	require.NotZero(t, g.ID)

	g.TargetAmount = decimal.RequireFromString("900.5")
	require.NoError(t, goals.UpdateGoal(ctx, g))

	got, err := goals.FindGoal(ctx, "alice", g.ID)
	require.NoError(t, err)
	assert.Equal(t, "900.50", core.FormatAmount(got.TargetAmount))
	assert.Equal(t, core.NewDate(2024, 1, 1), got.StartDate)

	_, err = goals.FindGoal(ctx, "bob", g.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := goals.ListGoals(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, goals.DeleteGoal(ctx, "alice", g.ID))
	assert.ErrorIs(t, goals.DeleteGoal(ctx, "alice", g.ID), core.ErrNotFound)
}

func testRollback(t *testing.T, s services.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(r services.Repositories) error {
		if _, err := r.Categories().InsertCategory(ctx, core.Category{Name: "Food", Type: core.Expense}); err != nil {
			return err
		}
		if _, err := r.Transactions().InsertTransaction(ctx, tx("alice", "1", core.NewDate(2024, 1, 1), "Food", core.Expense)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Categories().CountCategories(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
	all, err := s.Transactions().ListTransactions(ctx, "alice", core.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	err = s.WithTx(ctx, func(r services.Repositories) error {
		_, err := r.Categories().InsertCategory(ctx, core.Category{Name: "Food", Type: core.Expense})
		return err
	})
	require.NoError(t, err)
	n, err = s.Categories().CountCategories(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func idsOf(txs []core.Transaction) []int64 {
	var ids []int64
	for _, t := range txs {
		ids = append(ids, t.ID)
	}
	return ids
}
