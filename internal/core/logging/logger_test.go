package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger := Component("navigate")
	logger.Info().Msg("scan started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}

	if entry["cmp"] != "navigate" {
		t.Errorf("Component() cmp = %v, want %q", entry["cmp"], "navigate")
	}
	if entry["message"] != "scan started" {
		t.Errorf("Component() message = %v, want %q", entry["message"], "scan started")
	}
}

func TestSession(t *testing.T) {
	var buf bytes.Buffer

	logger := Session(zerolog.New(&buf), "sess-1", "doc-1")
	logger.Info().Msg("bound")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}

	if entry["session_id"] != "sess-1" || entry["document_id"] != "doc-1" {
		t.Errorf("Session() fields = %v", entry)
	}
}
