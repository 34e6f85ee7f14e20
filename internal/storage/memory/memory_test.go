package memory

import (
	"context"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) services.Store { return New() })
}

func TestWithTxSerialisesWriters(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.WithTx(ctx, func(r services.Repositories) error {
				n, err := r.Categories().CountCategories(ctx, "")
				if err != nil || n > 0 {
					return err
				}
				_, err = r.Categories().InsertCategory(ctx, core.Category{Name: "Salary", Type: core.Income})
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := s.Categories().CountCategories(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWithTxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().WithTx(ctx, func(services.Repositories) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
