package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: slog.LevelWarn, Output: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Flush(time.Second)

	Info("hidden message")
	Warn("comparison failed", "repo", "acme/web", "status", 404)

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "comparison failed") || !strings.Contains(out, "repo=acme/web") {
		t.Errorf("warn message missing attrs: %q", out)
	}
}

func TestInit_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "atttix.log")
	if err := Init(Config{Level: slog.LevelDebug, LogFile: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	With("source", "worker app").Debug("fetching commits")
	Flush(time.Second)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "source=\"worker app\"") {
		t.Errorf("log file = %q", string(data))
	}
}
