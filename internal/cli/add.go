package cli

import (
	"fmt"
	"time"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/ogulcanaydogan/cost-manager/pkg/tracker"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	Long:  `Record a single expense with amount, category, description, and date.`,
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().Float64P("amount", "a", 0, "Amount spent")
	addCmd.Flags().StringP("category", "c", "", "Category (e.g., Food, Housing)")
	addCmd.Flags().StringP("description", "d", "", "What the money was spent on")
	addCmd.Flags().String("date", "", "Date as YYYY-MM-DD (default: today)")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("category")
	_ = addCmd.MarkFlagRequired("description")
}

func runAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	amount, _ := cmd.Flags().GetFloat64("amount")
	category, _ := cmd.Flags().GetString("category")
	description, _ := cmd.Flags().GetString("description")
	dateFlag, _ := cmd.Flags().GetString("date")

	date := model.NormalizeDate(time.Now())
	if dateFlag != "" {
		if date, err = model.ParseDate(dateFlag); err != nil {
			return err
		}
	}

	t, store, err := initTracker(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := t.Add(cmd.Context(), tracker.CostInput{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	})
	if err != nil {
		return fmt.Errorf("add cost: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cost item added:\n")
	fmt.Fprintf(out, "  ID:          %d\n", record.ID)
	fmt.Fprintf(out, "  Date:        %s\n", record.Date.Format(model.DateLayout))
	fmt.Fprintf(out, "  Category:    %s\n", record.Category)
	fmt.Fprintf(out, "  Amount:      %.2f\n", record.Amount)
	fmt.Fprintf(out, "  Description: %s\n", record.Description)

	return nil
}
