package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		level    string
		expected LogLevel
	}{
		{name: "Debug via LOG_LEVEL", level: "debug", expected: LevelDebug},
		{name: "Info via LOG_LEVEL", level: "info", expected: LevelInfo},
		{name: "Warn via LOG_LEVEL", level: "warn", expected: LevelWarn},
		{name: "Error via LOG_LEVEL", level: "error", expected: LevelError},
		{name: "Case insensitive", level: "DEBUG", expected: LevelDebug},
		{name: "Warning alias", level: "warning", expected: LevelWarn},
		{name: "Unknown falls back to info", level: "chatty", expected: LevelInfo},
		{name: "DEBUG=true wins", debug: "true", level: "error", expected: LevelDebug},
		{name: "DEBUG=0 ignored", debug: "0", level: "warn", expected: LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.debug, tt.level); got != tt.expected {
				t.Errorf("parseLevel(%q, %q) = %v, want %v", tt.debug, tt.level, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestConfigureWritesToOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DEBUG", "")

	var buf bytes.Buffer
	if err := Configure(Options{Output: &buf}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() { _ = Configure(Options{}) })

	Info("hidden %d", 1)
	Warn("visible %d", 2)
	Printf("always %s", "printed")

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("info message should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "visible 2") {
		t.Errorf("warn message missing from output %q", out)
	}
	if !strings.Contains(out, "always printed") {
		t.Errorf("Printf message missing from output %q", out)
	}
	if GetLevel() != LevelWarn {
		t.Errorf("GetLevel() = %v, want warn", GetLevel())
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() should be false at warn level")
	}
}

func TestConfigureRotatingFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	logFile := filepath.Join(t.TempDir(), "player.log")

	var buf bytes.Buffer
	if err := Configure(Options{Output: &buf, File: logFile}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		_ = Configure(Options{})
	})

	Info("written to file")
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content %q does not contain message", data)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
