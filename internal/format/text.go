// Package format renders schema snapshots for human consumption.
package format

import (
	"fmt"
	"io"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// TextFormatter writes a snapshot as compact text, one table block at a
// time with tables and columns in sorted order.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the snapshot in compact text format.
func (f *TextFormatter) Format(s snapshot.Snapshot) error {
	for i, table := range s.Tables() {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(f.writer, "TABLE %s\n", table); err != nil {
			return err
		}
		for _, col := range s.ColumnNames(table) {
			if _, err := fmt.Fprintf(f.writer, "  %s: %s\n", col, s[table][col]); err != nil {
				return err
			}
		}
	}
	return nil
}
