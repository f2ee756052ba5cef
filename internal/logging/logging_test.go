package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Info event written at warn level: %s", buf.String())
	}

	logger.Warn().Str("component", "test").Msg("shown")
	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("Invalid JSON log line %q: %v", buf.String(), err)
	}
	if event["level"] != "warn" || event["message"] != "shown" || event["component"] != "test" {
		t.Errorf("Unexpected event: %v", event)
	}
	if _, ok := event["time"]; !ok {
		t.Error("Expected a timestamp")
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Error("Debug event written at the default level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(&buf, "loud"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
