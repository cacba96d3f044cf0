package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriter(&buf, false, FormatJSON)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("form rendered", zap.Int("fields", 2))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug entries filtered, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["msg"] != "form rendered" || entry["fields"] != float64(2) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewWriterVerboseConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriter(&buf, true, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("trigger bound", zap.String("field", "a"))
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "trigger bound") || !strings.Contains(buf.String(), "DEBUG") {
		t.Fatalf("expected debug entry in console output, got %q", buf.String())
	}
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, false, "xml"); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}
