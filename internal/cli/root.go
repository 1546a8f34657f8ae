package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ogulcanaydogan/cost-manager/internal/config"
	"github.com/ogulcanaydogan/cost-manager/pkg/storage"
	"github.com/ogulcanaydogan/cost-manager/pkg/tracker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "costmgr",
	Short: "Cost Manager - personal expense tracking",
	Long: `Cost Manager records personal expenses in a local embedded store and
reports them per month, with totals by category. It can be used from the
command line or through its JSON HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.costmgr/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage opens the cost store described by config.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLite, error) {
	var opts []storage.Option
	if d := cfg.Storage.OpTimeout(); d > 0 {
		opts = append(opts, storage.WithTimeout(d))
	}
	store, err := storage.Open(ctx, cfg.Storage.Dir, cfg.Storage.Name, cfg.Storage.Version, opts...)
	if err != nil {
		return nil, fmt.Errorf("open cost store: %w", err)
	}
	return store, nil
}

// initTracker creates a fully wired cost tracker logging to logger.
func initTracker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tracker.CostTracker, storage.Storage, error) {
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("cost store opened", "dir", cfg.Storage.Dir, "name", cfg.Storage.Name, "version", cfg.Storage.Version)
	return tracker.NewCostTracker(store, cfg.Categories, logger), store, nil
}

// periodFlags registers --month and --year on cmd.
func periodFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("month", "m", 0, "Month 1-12 (default: current month)")
	cmd.Flags().IntP("year", "y", 0, "Year (default: current year)")
}

// period reads --month and --year, falling back to now.
func period(cmd *cobra.Command, now time.Time) (month, year int) {
	month, _ = cmd.Flags().GetInt("month")
	year, _ = cmd.Flags().GetInt("year")
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year
}
