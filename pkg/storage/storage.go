package storage

import (
	"context"
	"iter"
	"time"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"
)

// Storage defines the persistence layer for cost records.
type Storage interface {
	// Insert persists a record and returns the id assigned to it.
	Insert(ctx context.Context, in model.CostInput) (int64, error)

	// InsertRecord persists a record and returns it exactly as a later read sees it.
	InsertRecord(ctx context.Context, in model.CostInput) (model.CostRecord, error)

	// ScanMonth lazily yields the records dated in the given month (1-12) and year.
	ScanMonth(ctx context.Context, month, year int) iter.Seq2[model.CostRecord, error]

	// QueryByMonth returns the records dated in the given month and year, in id order.
	QueryByMonth(ctx context.Context, month, year int) ([]model.CostRecord, error)

	// CategoryTotals sums the month's amounts per category.
	CategoryTotals(ctx context.Context, month, year int) (map[string]float64, error)

	// QueryByCategory returns every record with the given category.
	QueryByCategory(ctx context.Context, category string) ([]model.CostRecord, error)

	// QueryByDate returns every record dated on the given calendar day.
	QueryByDate(ctx context.Context, date time.Time) ([]model.CostRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases resources.
	Close() error
}

var _ Storage = (*SQLite)(nil)
