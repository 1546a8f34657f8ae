package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/ogulcanaydogan/cost-manager/pkg/tracker"
	"gopkg.in/yaml.v3"
)

const barWidth = 30

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderRecords writes records as an aligned table followed by their total.
func renderRecords(w io.Writer, records []model.CostRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No costs recorded for this period.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION\n")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n",
			r.ID, r.Date.Format(model.DateLayout), r.Category, r.Amount, r.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %.2f\n", model.Sum(records))
	return err
}

// renderReport writes a month report in the given format: table, json or yaml.
func renderReport(w io.Writer, report *tracker.MonthReport, format string) error {
	switch format {
	case "", "table":
		return renderRecords(w, report.Items)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: want table, json or yaml", format)
	}
}

type categoryTotal struct {
	name   string
	amount float64
}

// sortedTotals orders totals by amount, largest first, then by name.
func sortedTotals(totals map[string]float64) []categoryTotal {
	out := make([]categoryTotal, 0, len(totals))
	for _, name := range slices.Sorted(maps.Keys(totals)) {
		out = append(out, categoryTotal{name: name, amount: totals[name]})
	}
	slices.SortStableFunc(out, func(a, b categoryTotal) int {
		return cmp.Compare(b.amount, a.amount)
	})
	return out
}

// renderTotals draws one proportional bar per category.
func renderTotals(w io.Writer, month, year int, totals map[string]float64) {
	title := fmt.Sprintf("Costs by category, %s %d", time.Month(month), year)
	fmt.Fprintln(w, titleStyle.Render(title))

	if len(totals) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No costs recorded for this period."))
		return
	}

	rows := sortedTotals(totals)
	var sum float64
	labelWidth := 0
	for _, r := range rows {
		sum += r.amount
		labelWidth = max(labelWidth, len(r.name))
	}
	peak := rows[0].amount

	for _, r := range rows {
		n := 0
		if peak > 0 {
			n = int(r.amount / peak * barWidth)
		}
		share := 0.0
		if sum > 0 {
			share = r.amount / sum * 100
		}
		bar := barStyle.Render(strings.Repeat("█", n))
		fmt.Fprintf(w, "%-*s %s %.2f %s\n", labelWidth, r.name, bar, r.amount,
			mutedStyle.Render(fmt.Sprintf("(%.1f%%)", share)))
	}
	fmt.Fprintf(w, "%-*s %.2f\n", labelWidth, "Total", sum)
}

// renderYear writes one line per month with its total and largest category.
func renderYear(w io.Writer, reports []tracker.MonthReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "MONTH\tRECORDS\tTOTAL\tTOP CATEGORY\n")
	var sum float64
	for _, r := range reports {
		top := "-"
		if rows := sortedTotals(r.Totals); len(rows) > 0 {
			top = rows[0].name
		}
		sum += r.Total
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\n", time.Month(r.Month), len(r.Items), r.Total, top)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %.2f\n", sum)
	return err
}
