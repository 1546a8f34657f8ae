package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show spending per category",
	Long:  `Show a month's spending per category as a bar chart, or the monthly totals of a whole year.`,
	RunE:  runTotals,
}

func init() {
	rootCmd.AddCommand(totalsCmd)
	periodFlags(totalsCmd)
	totalsCmd.Flags().Bool("all-year", false, "Summarise every month of the year")
}

func runTotals(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	month, year := period(cmd, time.Now())
	allYear, _ := cmd.Flags().GetBool("all-year")

	t, store, err := initTracker(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	if allYear {
		reports, err := t.YearReport(cmd.Context(), year)
		if err != nil {
			return fmt.Errorf("year totals: %w", err)
		}
		return renderYear(cmd.OutOrStdout(), reports)
	}

	report, err := t.MonthReport(cmd.Context(), month, year)
	if err != nil {
		return fmt.Errorf("category totals: %w", err)
	}

	renderTotals(cmd.OutOrStdout(), month, year, report.Totals)
	return nil
}
