package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/schemawatch"
	"github.com/tordrt/schemawatch/internal/format"
	"github.com/tordrt/schemawatch/internal/snapshot"
)

var (
	snapshotDBURL  string
	snapshotSchema string
	snapshotFormat string
	snapshotOutput string
	showHash       bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the current schema once and print it",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDBURL, "db-url", "", "database connection URL (postgres://, mysql://, or sqlite://)")
	snapshotCmd.Flags().StringVarP(&snapshotSchema, "schema", "s", "", "database schema name (default: public for PostgreSQL)")
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", "", "output format: text or markdown")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "output file (default: stdout)")
	snapshotCmd.Flags().BoolVar(&showHash, "hash", false, "print only the snapshot hash")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	url, err := databaseURL(snapshotDBURL)
	if err != nil {
		return err
	}

	snap, err := schemawatch.Capture(ctx, url, &schemawatch.Options{SchemaName: snapshotSchema})
	if err != nil {
		return fmt.Errorf("failed to capture schema: %w", err)
	}

	if showHash {
		fmt.Println(snap.Hash())
		return nil
	}

	var writer = os.Stdout
	if snapshotOutput != "" {
		f, err := os.Create(snapshotOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	outFormat := snapshotFormat
	if outFormat == "" {
		outFormat = viper.GetString("output.format")
	}

	return renderSnapshot(snap, outFormat, writer)
}

func renderSnapshot(snap snapshot.Snapshot, outFormat string, writer io.Writer) error {
	switch outFormat {
	case "text":
		return format.NewTextFormatter(writer).Format(snap)
	case "markdown":
		return format.NewMarkdownFormatter(writer).Format(snap)
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", outFormat)
	}
}
