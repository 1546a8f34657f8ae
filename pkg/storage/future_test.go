package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/ogulcanaydogan/cost-manager/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_InsertThenQuery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pending := db.InsertAsync(ctx, model.CostInput{Amount: 100, Category: "Food", Date: day(2024, time.March, 5)})
	id, err := pending.Await(ctx)
	require.NoError(t, err)
	assert.Positive(t, id)

	select {
	case <-pending.Done():
	default:
		t.Fatal("Done must be closed once Await returned the result")
	}

	records, err := db.QueryByMonthAsync(ctx, 3, 2024).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ids(records))

	totals, err := db.CategoryTotalsAsync(ctx, 3, 2024).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food": 100}, totals)
}

func TestFuture_ConcurrentScans(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	insert(t, db, 10, "Food", day(2024, time.March, 1))
	insert(t, db, 20, "Housing", day(2024, time.March, 2))

	scans := make([]*storage.Future[[]model.CostRecord], 0, 8)
	for i := 0; i < 8; i++ {
		scans = append(scans, db.QueryByMonthAsync(ctx, 3, 2024))
	}
	for _, s := range scans {
		records, err := s.Await(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	}
}

func TestFuture_AwaitCancelled(t *testing.T) {
	db := newTestDB(t)

	pending := db.QueryByMonthAsync(context.Background(), 3, 2024)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the scan already finished or the wait was abandoned.
	records, err := pending.Await(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, records)
	}

	// The operation itself still completes.
	records, err = pending.Await(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFuture_PropagatesErrors(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Close())

	_, err := db.InsertAsync(context.Background(), model.CostInput{Amount: 1, Category: "Food", Date: day(2024, time.March, 1)}).
		Await(context.Background())
	assert.ErrorIs(t, err, storage.ErrWrite)
}
