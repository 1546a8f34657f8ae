package storage

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"

	_ "modernc.org/sqlite"
)

const (
	// DefaultName is the name of the cost store file, without extension.
	DefaultName = "CostManagerDB"

	// DefaultVersion is the schema version the application opens.
	DefaultVersion = 1
)

const selectCosts = "SELECT id, amount, category, description, date, created_at FROM costs"

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db      *sql.DB
	path    string
	timeout time.Duration
}

// Option configures an SQLite store.
type Option func(*SQLite)

// WithTimeout bounds every operation whose context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *SQLite) { s.timeout = d }
}

// Open opens the named cost store in dir at the given schema version, creating
// the collection and its indexes if the store is new. Opening an existing store
// leaves its records untouched.
func Open(ctx context.Context, dir, name string, version int, opts ...Option) (*SQLite, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty store name", ErrConnection)
	}
	if version < 1 {
		return nil, fmt.Errorf("%w: invalid version %d", ErrConnection, version)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", ErrConnection, err)
	}
	dbPath := filepath.Join(dir, name+".db")

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrConnection, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", ErrConnection, err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %w", ErrConnection, err)
	}

	if err := runMigrations(ctx, dbPath, version); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db, path: dbPath}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func dsn(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)"
}

// Path returns the database file backing the store.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Insert(ctx context.Context, in model.CostInput) (int64, error) {
	r, err := s.InsertRecord(ctx, in)
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}

// InsertRecord persists a record and returns it as stored, with its id,
// normalised date and creation time.
func (s *SQLite) InsertRecord(ctx context.Context, in model.CostInput) (model.CostRecord, error) {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return model.CostRecord{}, fmt.Errorf("%w: %w", ErrWrite, ErrNonFiniteAmount)
	}
	date := model.NormalizeDate(in.Date)
	if !model.StorableDate(date) {
		return model.CostRecord{}, fmt.Errorf("%w: %w: got %d", ErrWrite, ErrDateOutOfRange, date.Year())
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	createdAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO costs (amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.Amount, in.Category, in.Description,
		date.Format(model.DateLayout),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.CostRecord{}, fmt.Errorf("%w: insert cost: %w", ErrWrite, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.CostRecord{}, fmt.Errorf("%w: read inserted id: %w", ErrWrite, err)
	}
	return model.CostRecord{
		ID:          id,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        date,
		CreatedAt:   createdAt,
	}, nil
}

// ScanMonth walks the whole collection in id order and yields the records
// dated in the given month and year. Each call starts a fresh scan. A failure
// is yielded once as the final element.
func (s *SQLite) ScanMonth(ctx context.Context, month, year int) iter.Seq2[model.CostRecord, error] {
	return func(yield func(model.CostRecord, error) bool) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		rows, err := s.db.QueryContext(ctx, selectCosts+" ORDER BY id")
		if err != nil {
			yield(model.CostRecord{}, fmt.Errorf("%w: scan costs: %w", ErrRead, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				yield(model.CostRecord{}, err)
				return
			}
			if !r.InMonth(month, year) {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.CostRecord{}, fmt.Errorf("%w: scan costs: %w", ErrRead, err))
		}
	}
}

func (s *SQLite) QueryByMonth(ctx context.Context, month, year int) ([]model.CostRecord, error) {
	records := []model.CostRecord{}
	for r, err := range s.ScanMonth(ctx, month, year) {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *SQLite) CategoryTotals(ctx context.Context, month, year int) (map[string]float64, error) {
	records, err := s.QueryByMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}
	return model.SumByCategory(records), nil
}

func (s *SQLite) QueryByCategory(ctx context.Context, category string) ([]model.CostRecord, error) {
	return s.query(ctx, "category", selectCosts+" WHERE category = ? ORDER BY id", category)
}

func (s *SQLite) QueryByDate(ctx context.Context, date time.Time) ([]model.CostRecord, error) {
	day := model.NormalizeDate(date).Format(model.DateLayout)
	return s.query(ctx, "date", selectCosts+" WHERE date = ? ORDER BY id", day)
}

func (s *SQLite) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM costs").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count costs: %w", ErrRead, err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) query(ctx context.Context, field, query string, args ...any) ([]model.CostRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query by %s: %w", ErrRead, field, err)
	}
	defer rows.Close()

	records := []model.CostRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query by %s: %w", ErrRead, field, err)
	}
	return records, nil
}

func (s *SQLite) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func scanRecord(rows *sql.Rows) (model.CostRecord, error) {
	var (
		r               model.CostRecord
		date, createdAt string
	)
	if err := rows.Scan(&r.ID, &r.Amount, &r.Category, &r.Description, &date, &createdAt); err != nil {
		return model.CostRecord{}, fmt.Errorf("%w: scan cost row: %w", ErrRead, err)
	}

	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return model.CostRecord{}, fmt.Errorf("%w: cost %d has malformed date %q", ErrRead, r.ID, date)
	}
	r.Date = d

	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.CostRecord{}, fmt.Errorf("%w: cost %d has malformed created_at %q", ErrRead, r.ID, createdAt)
	}
	return r, nil
}
