package logging

import (
	"log/slog"
	"testing"

	"github.com/madmax/chardev-core/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewReturnsUsableLogger(t *testing.T) {
	cfgs := []config.LoggingConfig{
		{Level: "debug", Format: "json", Output: "stdout"},
		{Level: "info", Format: "text", Output: "stderr"},
		{Level: "error", Format: "unknown", Output: "unknown"},
	}

	for _, cfg := range cfgs {
		log := New(cfg, "test")
		if log == nil || log.Logger == nil {
			t.Fatalf("New(%+v) returned nil logger", cfg)
		}
		// Must not panic.
		log.Debug("debug message", "key", "value")
		log.Error("error message", "key", "value")
	}
}

func TestWithAddsAttributes(t *testing.T) {
	log := Default()

	child := log.With("component", "test")
	if child == nil || child.Logger == nil {
		t.Fatal("With() returned nil logger")
	}
	if child == log {
		t.Error("With() returned the same logger instance")
	}
	child.Info("message from child")
}
