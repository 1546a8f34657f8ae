package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/ogulcanaydogan/cost-manager/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput is returned when a caller-supplied value breaks a business rule.
var ErrInvalidInput = errors.New("invalid input")

// yearReportConcurrency bounds the month scans a year report runs at once.
const yearReportConcurrency = 4

// MonthReport holds one month's records and their per-category totals.
type MonthReport struct {
	Month  int                `json:"month" yaml:"month"`
	Year   int                `json:"year" yaml:"year"`
	Items  []CostRecord       `json:"items" yaml:"items"`
	Totals map[string]float64 `json:"totals" yaml:"totals"`
	Total  float64            `json:"total" yaml:"total"`
}

// CostTracker is the main entry point for recording and reviewing expenses.
type CostTracker struct {
	storage    storage.Storage
	categories []string
	logger     *slog.Logger
}

// NewCostTracker creates a tracker. An empty category list means model.DefaultCategories.
func NewCostTracker(store storage.Storage, categories []string, logger *slog.Logger) *CostTracker {
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}
	return &CostTracker{
		storage:    store,
		categories: slices.Clone(categories),
		logger:     logger,
	}
}

// Categories returns the categories a record may be filed under.
func (t *CostTracker) Categories() []string {
	return slices.Clone(t.categories)
}

// Add validates and stores a new expense.
func (t *CostTracker) Add(ctx context.Context, in CostInput) (*CostRecord, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := t.validate(in); err != nil {
		return nil, err
	}
	in.Date = model.NormalizeDate(in.Date)

	record, err := t.storage.InsertRecord(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("store cost: %w", err)
	}

	t.logger.Info("cost recorded",
		"id", record.ID,
		"amount", record.Amount,
		"category", record.Category,
		"date", record.Date.Format(model.DateLayout),
	)

	return &record, nil
}

// MonthReport returns the month's records and totals derived from the same scan.
func (t *CostTracker) MonthReport(ctx context.Context, month, year int) (*MonthReport, error) {
	if !model.ValidMonth(month) {
		return nil, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidInput, month)
	}

	items, err := t.storage.QueryByMonth(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("query month: %w", err)
	}

	t.logger.Debug("month report", "month", month, "year", year, "records", len(items))

	return &MonthReport{
		Month:  month,
		Year:   year,
		Items:  items,
		Totals: model.SumByCategory(items),
		Total:  model.Sum(items),
	}, nil
}

// YearReport builds the twelve month reports of a year concurrently.
func (t *CostTracker) YearReport(ctx context.Context, year int) ([]MonthReport, error) {
	reports := make([]MonthReport, 12)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(yearReportConcurrency)
	for i := range reports {
		g.Go(func() error {
			r, err := t.MonthReport(ctx, i+1, year)
			if err != nil {
				return err
			}
			reports[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("year report %d: %w", year, err)
	}
	return reports, nil
}

// CategoryHistory returns every record filed under category, oldest first.
func (t *CostTracker) CategoryHistory(ctx context.Context, category string) ([]CostRecord, error) {
	return t.storage.QueryByCategory(ctx, category)
}

func (t *CostTracker) validate(in CostInput) error {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	}
	if !slices.Contains(t.categories, in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if !model.StorableDate(model.NormalizeDate(in.Date)) {
		return fmt.Errorf("%w: date year must be between 0 and 9999", ErrInvalidInput)
	}
	return nil
}
