package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"budgetit/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoggerJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).WithComponent(ComponentCategory)

	logger.Info("Category created", FieldCategoryID, 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentCategory {
		t.Fatalf("expected component %q, got %v", ComponentCategory, rec[FieldComponent])
	}
	if rec[FieldCategoryID] != float64(7) {
		t.Fatalf("expected category_id 7, got %v", rec[FieldCategoryID])
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantOut   string
	}{
		{"success", nil, "INFO", "success"},
		{"validation", core.ErrEmptyName, "WARN", "validation_error"},
		{"persistence", core.WrapStoreError("insert", fmt.Errorf("disk full")), "ERROR", "persistence_failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}))
			sl.LogOutcome(context.Background(), "done", OpCreate, tt.err, NewFields().With(FieldCount, 1))

			var rec map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("decode log record: %v", err)
			}
			if rec["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", rec["level"], tt.wantLevel)
			}
			if rec[FieldOutcome] != tt.wantOut {
				t.Errorf("outcome = %v, want %s", rec[FieldOutcome], tt.wantOut)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).WithComponent(ComponentCLI)
	ctx := NewContext(context.Background(), logger)

	if got := FromContext(ctx); got.Component() != ComponentCLI {
		t.Fatalf("expected cli logger, got %q", got.Component())
	}
	if got := FromContext(context.Background()); got == nil || got.Component() != ComponentApp {
		t.Fatalf("expected default app logger")
	}
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "component=cli") {
		t.Fatalf("expected component in text output, got %q", buf.String())
	}
}
