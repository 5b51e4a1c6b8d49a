package format

import (
	"bytes"
	"testing"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

func TestTextFormatterSortsOutput(t *testing.T) {
	s := snapshot.Snapshot{
		"zebra": {"b": "TEXT", "a": "INTEGER"},
		"alpha": {"id": "INTEGER"},
	}

	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "TABLE alpha\n  id: INTEGER\n\nTABLE zebra\n  a: INTEGER\n  b: TEXT\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatterEmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format(snapshot.Snapshot{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestMarkdownFormatterIncludesHash(t *testing.T) {
	s := snapshot.Snapshot{"users": {"id": "INTEGER"}}

	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte(s.Hash())) {
		t.Errorf("markdown output missing snapshot hash: %q", out)
	}
}
