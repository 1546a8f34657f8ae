package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format records are stored and exchanged in.
const DateLayout = "2006-01-02"

// DefaultCategories is the category set offered to users when none is configured.
var DefaultCategories = []string{
	"Housing",
	"Food",
	"Shopping",
	"Transportation",
	"Entertainment",
	"Other",
}

// CostRecord is a single stored expense.
type CostRecord struct {
	ID          int64     `json:"id" yaml:"id"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Date        time.Time `json:"date" yaml:"date"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// CostInput is what a caller supplies to record an expense. The store assigns the ID.
type CostInput struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// NormalizeDate drops the time of day from t, keeping the calendar day as seen
// in t's own location, and returns it as midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date ("2006-01-02") or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return NormalizeDate(t), nil
}

// InMonth reports whether the record's calendar date falls in the given month (1-12) and year.
func (r CostRecord) InMonth(month, year int) bool {
	return r.Date.Year() == year && int(r.Date.Month()) == month
}

// StorableDate reports whether t's calendar day can be written in DateLayout
// and read back, which limits the year to 0-9999.
func StorableDate(t time.Time) bool {
	y := t.Year()
	return y >= 0 && y <= 9999
}

// ValidMonth reports whether month is a calendar month number.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// SumByCategory totals amounts per category. Categories without records are absent.
func SumByCategory(records []CostRecord) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.Category] += r.Amount
	}
	return totals
}

// Sum returns the total amount across records.
func Sum(records []CostRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}
