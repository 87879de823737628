package log

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "json")

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "lobby").Msg("visible")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single json line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "visible" || entry["component"] != "lobby" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("loud"); got.String() != "info" {
		t.Fatalf("unknown level should map to info, got %s", got)
	}
	if got := parseLevel("WARNING"); got.String() != "warn" {
		t.Fatalf("level parsing should be case-insensitive, got %s", got)
	}
}
