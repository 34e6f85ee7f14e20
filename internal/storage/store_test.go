package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) services.Store { return newTestStore(t) })
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")

	v, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)

	v, err = RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
}

func TestAmountsRoundTripExactly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.InsertTransaction(ctx, core.Transaction{
		Owner:    "alice",
		Amount:   decimal.RequireFromString("0.10"),
		Date:     core.NewDate(2024, 2, 29),
		Category: "Food",
		Type:     core.Expense,
	})
	require.NoError(t, err)

	got, err := s.FindTransaction(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.10", got.Amount.StringFixed(2))
	assert.Equal(t, "2024-02-29", got.Date.String())
}

func TestConcurrentDuplicateInsertsOneWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.WithTx(ctx, func(r services.Repositories) error {
				_, err := r.Categories().InsertCategory(ctx, core.Category{Name: "Gym", Type: core.Expense, IsCustom: true, Owner: "alice"})
				return err
			})
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, core.ErrDuplicate)
		dup++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestIsUniqueViolationFallback(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.ErrorIs(t, mapError(errUnique{}), core.ErrDuplicate)
}

type errUnique struct{}

func (errUnique) Error() string { return "constraint failed: UNIQUE constraint failed: categories.owner, categories.name" }
