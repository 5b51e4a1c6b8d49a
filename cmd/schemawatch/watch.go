package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tordrt/schemawatch"
	"github.com/tordrt/schemawatch/internal/diff"
)

var (
	watchDBURL   string
	watchSchema  string
	watchVerbose bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the schema continuously and log changes",
	Long: `watch captures the schema on a fixed interval and logs a typed change
record for every added, removed, or renamed table/column and every column
type change. Transient connection failures are retried on the next interval.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDBURL, "db-url", "", "database connection URL (postgres://, mysql://, or sqlite://)")
	watchCmd.Flags().StringVarP(&watchSchema, "schema", "s", "", "database schema name (default: public for PostgreSQL)")
	watchCmd.Flags().Duration("interval", 60*time.Second, "interval between captures")
	watchCmd.Flags().Bool("detect-renames", true, "pair similar added/removed names as renames")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "debug logging")

	// Flag > config file > default.
	_ = viper.BindPFlag("monitor.interval", watchCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("monitor.detect_renames", watchCmd.Flags().Lookup("detect-renames"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url, err := databaseURL(watchDBURL)
	if err != nil {
		return err
	}

	logger, err := buildLogger(watchVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	mon, err := schemawatch.Watch(ctx, url, &schemawatch.WatchOptions{
		Interval:       viper.GetDuration("monitor.interval"),
		DisableRenames: !viper.GetBool("monitor.detect_renames"),
		SchemaName:     watchSchema,
		Logger:         logger,
		OnChange:       logChanges(logger),
	})
	if err != nil {
		return fmt.Errorf("failed to start monitoring: %w", err)
	}

	<-ctx.Done()
	mon.Stop()
	return nil
}

// logChanges returns a change handler that logs one entry per record.
func logChanges(logger *zap.Logger) func(records []diff.Record) {
	return func(records []diff.Record) {
		for _, r := range records {
			logger.Info("schema change",
				zap.String("kind", string(r.Kind)),
				zap.String("table", r.Table),
				zap.String("column", r.Column),
				zap.String("old", r.OldValue),
				zap.String("new", r.NewValue))
		}
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
