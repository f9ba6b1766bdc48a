package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		hasError bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		got, err := ParseLevel(tc.input)
		if tc.hasError {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter(&buf, "info", "json"); err != nil {
		t.Fatalf("InitWriter failed: %v", err)
	}

	Debug("hidden")
	WithError(errors.New("boom")).Info("fetch failed", "code", "de")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("Invalid JSON log line: %v", err)
	}
	if rec["msg"] != "fetch failed" || rec["code"] != "de" || rec["error"] != "boom" {
		t.Errorf("Unexpected record: %v", rec)
	}
	if rec["app"] != "flagpic" {
		t.Errorf("app = %v, expected flagpic", rec["app"])
	}
}

func TestInitWriterInvalidFormat(t *testing.T) {
	if err := InitWriter(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}
