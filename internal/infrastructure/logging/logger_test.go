package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/limbx/limbx-core/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "info", Format: "json", Output: "stdout"},
		{Level: "debug", Format: "text", Output: "stderr"},
	} {
		if New(cfg, "1.0.0") == nil {
			t.Fatalf("New(%+v) = nil", cfg)
		}
	}
	if Default() == nil {
		t.Fatal("Default() = nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// decodeEntry logs one line through a JSON logger and returns it decoded.
func decodeEntry(t *testing.T, log func(l *Logger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l := newLogger(&buf, config.LoggingConfig{Level: "info", Format: "json"}, "test")
	log(l)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogger_DefaultFields(t *testing.T) {
	entry := decodeEntry(t, func(l *Logger) {
		l.Info("circuit completed", "circuit", "koala_loop")
	})

	if entry["service"] != ServiceName {
		t.Errorf("service = %v, want %s", entry["service"], ServiceName)
	}
	if entry["version"] != "test" {
		t.Errorf("version = %v, want test", entry["version"])
	}
	if entry["msg"] != "circuit completed" || entry["circuit"] != "koala_loop" {
		t.Errorf("entry = %v", entry)
	}
}

func TestLogger_DurationsAreReadable(t *testing.T) {
	entry := decodeEntry(t, func(l *Logger) {
		l.Info("circuit completed", "total", 42*time.Second+512345*time.Microsecond)
	})

	if entry["total"] != "42.512s" {
		t.Errorf("total = %v, want 42.512s", entry["total"])
	}
}

func TestLogger_Component(t *testing.T) {
	entry := decodeEntry(t, func(l *Logger) {
		l.Component("engine").Info("instance created")
	})

	if entry["component"] != "engine" {
		t.Errorf("component = %v, want engine", entry["component"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, "test")

	l.Info("gesture", "device", "tag1")
	l.Warn("no light command topic", "device", "r4")

	out := buf.String()
	if strings.Contains(out, "gesture") {
		t.Errorf("info entry written at warn level: %s", out)
	}
	if !strings.Contains(out, "device=r4") {
		t.Errorf("warn entry missing: %s", out)
	}
}
