package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the costs of a month",
	Long:  `List every cost recorded in a month, in the order they were added.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	periodFlags(listCmd)
	listCmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	month, year := period(cmd, time.Now())
	format, _ := cmd.Flags().GetString("format")

	t, store, err := initTracker(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := t.MonthReport(cmd.Context(), month, year)
	if err != nil {
		return fmt.Errorf("list costs: %w", err)
	}

	return renderReport(cmd.OutOrStdout(), report, format)
}
