package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

func TestDatabaseURLResolution(t *testing.T) {
	tests := []struct {
		name      string
		flagValue string
		configURL string
		want      string
		wantErr   bool
	}{
		{
			name:      "flag wins over config",
			flagValue: "sqlite://flag.db",
			configURL: "sqlite://config.db",
			want:      "sqlite://flag.db",
		},
		{
			name:      "config used when flag empty",
			flagValue: "",
			configURL: "sqlite://config.db",
			want:      "sqlite://config.db",
		},
		{
			name:      "error when neither set",
			flagValue: "",
			configURL: "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			if tt.configURL != "" {
				viper.Set("database.url", tt.configURL)
			}

			got, err := databaseURL(tt.flagValue)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("databaseURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDatabaseURLFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv("SCHEMAWATCH_DATABASE_URL", "sqlite://env.db")
	initConfig()

	got, err := databaseURL("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "sqlite://env.db" {
		t.Errorf("databaseURL() = %s, want sqlite://env.db", got)
	}

	// The flag still wins over the environment.
	got, err = databaseURL("sqlite://flag.db")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "sqlite://flag.db" {
		t.Errorf("databaseURL() = %s, want sqlite://flag.db", got)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("SCHEMAWATCH_MONITOR_DETECT_RENAMES", "false")
	initConfig()

	if viper.GetBool("monitor.detect_renames") {
		t.Error("expected SCHEMAWATCH_MONITOR_DETECT_RENAMES to override the default")
	}
}

func TestRenderSnapshot(t *testing.T) {
	snap := snapshot.Snapshot{
		"customers": {"id": "INTEGER", "email": "TEXT"},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := renderSnapshot(snap, "text", &buf); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "TABLE customers") {
			t.Errorf("text output missing table header: %q", out)
		}
		if !strings.Contains(out, "email: TEXT") {
			t.Errorf("text output missing column line: %q", out)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := renderSnapshot(snap, "markdown", &buf); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "## customers") {
			t.Errorf("markdown output missing table section: %q", out)
		}
		if !strings.Contains(out, "| id | INTEGER |") {
			t.Errorf("markdown output missing column row: %q", out)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := renderSnapshot(snap, "yaml", &buf); err == nil {
			t.Error("Expected error for invalid format")
		}
	})
}
