package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestReserveThenReleaseRestoresStock(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "12.00", 10)
	ledger := NewInventoryLedger(catalog)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, "b1", 4))
	require.Equal(t, uint(6), catalog.stock("b1"))

	require.NoError(t, ledger.Release(ctx, "b1", 4))
	require.Equal(t, uint(10), catalog.stock("b1"))
}

func TestReserveInsufficientStockLeavesStockUntouched(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "12.00", 2)
	ledger := NewInventoryLedger(catalog)

	err := ledger.Reserve(context.Background(), "b1", 5)

	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "b1", stockErr.BookID)
	require.Equal(t, 5, stockErr.Requested)
	require.Equal(t, 2, stockErr.Available)
	require.Equal(t, uint(2), catalog.stock("b1"))
}

func TestReserveAllAllOrNothing(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "10.00", 5)
	catalog.addBook("b2", "8.00", 5)
	catalog.addBook("b3", "6.00", 1)
	ledger := NewInventoryLedger(catalog)

	// b3 fails after b1 and b2 were already decremented; both must come back.
	err := ledger.ReserveAll(context.Background(), []StockLine{
		{BookID: "b1", Quantity: 3},
		{BookID: "b2", Quantity: 2},
		{BookID: "b3", Quantity: 4},
	})

	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "b3", stockErr.BookID)
	require.Equal(t, uint(5), catalog.stock("b1"))
	require.Equal(t, uint(5), catalog.stock("b2"))
	require.Equal(t, uint(1), catalog.stock("b3"))
}

func TestReserveAllSuccessDecrementsEveryLine(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "10.00", 5)
	catalog.addBook("b2", "8.00", 5)
	ledger := NewInventoryLedger(catalog)

	err := ledger.ReserveAll(context.Background(), []StockLine{
		{BookID: "b1", Quantity: 3},
		{BookID: "b2", Quantity: 1},
	})

	require.NoError(t, err)
	require.Equal(t, uint(2), catalog.stock("b1"))
	require.Equal(t, uint(4), catalog.stock("b2"))
}

func TestReleaseAllReportsFailures(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "10.00", 0)
	catalog.addBook("b2", "8.00", 0)
	catalog.failRelease["b2"] = errors.New("connection reset")
	ledger := NewInventoryLedger(catalog)

	err := ledger.ReleaseAll(context.Background(), []StockLine{
		{BookID: "b1", Quantity: 2},
		{BookID: "b2", Quantity: 3},
	})

	require.Error(t, err)
	// The healthy line was still released.
	require.Equal(t, uint(2), catalog.stock("b1"))
}

func TestReleaseAllRunsWithCancelledContext(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "10.00", 0)
	ledger := NewInventoryLedger(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ledger.ReleaseAll(ctx, []StockLine{{BookID: "b1", Quantity: 3}})

	require.NoError(t, err)
	require.Equal(t, uint(3), catalog.stock("b1"))
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	catalog := newFakeBookRepo()
	catalog.addBook("b1", "10.00", 1)
	ledger := NewInventoryLedger(catalog)

	const attempts = 2
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ledger.Reserve(context.Background(), "b1", 1)
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *model.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		failed++
	}

	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)
	require.Equal(t, uint(0), catalog.stock("b1"))
}
