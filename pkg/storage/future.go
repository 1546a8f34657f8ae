package storage

import (
	"context"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"
)

// Future is the eventual result of an operation running in the background.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func goFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the operation finishes or ctx ends. Giving up on a
// Future does not stop the operation; cancel the context it was started with.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// InsertAsync starts Insert and returns without waiting for it.
func (s *SQLite) InsertAsync(ctx context.Context, in model.CostInput) *Future[int64] {
	return goFuture(ctx, func(ctx context.Context) (int64, error) {
		return s.Insert(ctx, in)
	})
}

// QueryByMonthAsync starts QueryByMonth and returns without waiting for it.
func (s *SQLite) QueryByMonthAsync(ctx context.Context, month, year int) *Future[[]model.CostRecord] {
	return goFuture(ctx, func(ctx context.Context) ([]model.CostRecord, error) {
		return s.QueryByMonth(ctx, month, year)
	})
}

// CategoryTotalsAsync starts CategoryTotals and returns without waiting for it.
func (s *SQLite) CategoryTotalsAsync(ctx context.Context, month, year int) *Future[map[string]float64] {
	return goFuture(ctx, func(ctx context.Context) (map[string]float64, error) {
		return s.CategoryTotals(ctx, month, year)
	})
}
