package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLoggerTo_WritesJSONWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := WithProjectID(WithComponent(NewLoggerTo(&buf, "info"), "editor"), "project-1")

	logger.Debug("hidden")
	logger.Info("saved", "clips", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "saved" {
		t.Errorf("msg = %v, want saved", entry["msg"])
	}
	if entry["component"] != "editor" || entry["project_id"] != "project-1" {
		t.Errorf("missing attrs in %v", entry)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("short"); got != "****" {
		t.Errorf("SanitizeToken(short) = %q", got)
	}
	if got := SanitizeToken("abcdefghijklmnop"); got != "abcd...mnop" {
		t.Errorf("SanitizeToken(long) = %q", got)
	}
}
