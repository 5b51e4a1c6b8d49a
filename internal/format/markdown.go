package format

import (
	"fmt"
	"io"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// MarkdownFormatter writes a snapshot as a markdown document with one
// section per table.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the snapshot as markdown.
func (f *MarkdownFormatter) Format(s snapshot.Snapshot) error {
	if _, err := fmt.Fprintf(f.writer, "# Database Schema\n\nHash: `%s`\n", s.Hash()); err != nil {
		return err
	}

	for _, table := range s.Tables() {
		if _, err := fmt.Fprintf(f.writer, "\n## %s\n\n", table); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f.writer, "| Column | Type |"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f.writer, "|--------|------|"); err != nil {
			return err
		}
		for _, col := range s.ColumnNames(table) {
			if _, err := fmt.Fprintf(f.writer, "| %s | %s |\n", col, s[table][col]); err != nil {
				return err
			}
		}
	}
	return nil
}
