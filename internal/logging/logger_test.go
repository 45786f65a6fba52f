package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleHandlerLineShape(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, level, false))

	NewComponentLogger(logger, "engine").Info("task accepted",
		String(FieldRequestID, "42"),
		String("op", "cache artist list"))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO engine: task accepted") {
		t.Fatalf("component prefix missing: %q", line)
	}
	if !strings.Contains(line, "request_id=42") {
		t.Fatalf("attribute missing: %q", line)
	}
	if !strings.Contains(line, `op="cache artist list"`) {
		t.Fatalf("value with spaces must be quoted: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as a field: %q", line)
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, level, false))

	logger.WithGroup("ramp").Info("fader set", Int("track", 3))

	if line := buf.String(); !strings.Contains(line, "ramp.track=3") {
		t.Fatalf("group key not flattened: %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, level, false))

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info line emitted at warn level: %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "WARN loud") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewCreatesLogFileDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cadenzad.log")
	logger, err := New(Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("boot")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"boot"`) {
		t.Fatalf("json line missing: %q", data)
	}
}
