package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autodiag/internal/logging"
)

func readLogFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func TestNewConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "autodiag.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "diagnose")
	component.Info("diagnosis complete", logging.Float64("confidence", 0.85), logging.Bool("ai_powered", true))
	component.Debug("should be filtered")

	out := readLogFile(t, path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), out)
	}
	line := lines[0]
	if !strings.Contains(line, "INFO") {
		t.Fatalf("missing level label: %q", line)
	}
	if !strings.Contains(line, "diagnose: diagnosis complete") {
		t.Fatalf("missing component prefix: %q", line)
	}
	if !strings.Contains(line, "confidence=0.85") {
		t.Fatalf("missing confidence attr: %q", line)
	}
	if !strings.Contains(line, "ai_powered=true") {
		t.Fatalf("missing ai_powered attr: %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autodiag.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("diagnosis complete", logging.Int("data_sources", 3))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLogFile(t, path))), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["msg"] != "diagnosis complete" {
		t.Fatalf("msg: %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("level: %v", entry["level"])
	}
	if entry["ts"] == nil {
		t.Fatal("missing ts field")
	}
	if entry["data_sources"] != float64(3) {
		t.Fatalf("data_sources: %v", entry["data_sources"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "yaml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWarnWithContextEnforcesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autodiag.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "falling back", "reasoning_unavailable", logging.Error(errors.New("upstream 503")))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLogFile(t, path))), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["event_type"] != "reasoning_unavailable" {
		t.Fatalf("event_type: %v", entry["event_type"])
	}
	if entry["error_hint"] == nil || entry["impact"] == nil {
		t.Fatalf("missing enforced fields: %v", entry)
	}
}

func TestNewComponentLoggerNilBaseIsSafe(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "api")
	// Must not panic; output is discarded.
	logger.Info("message", logging.String("key", "value"))
}
