package telemetry

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LoggerOptions{Level: "debug", Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info().Str("run_id", "abc").Msg("started")
	line := buf.String()
	if !strings.Contains(line, `"run_id":"abc"`) {
		t.Errorf("log line %q should carry the field as JSON", line)
	}
	if !strings.Contains(line, `"level":"info"`) {
		t.Errorf("log line %q should carry the level", line)
	}
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LoggerOptions{Level: "warn", Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line should be filtered at warn level, got %q", buf.String())
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger(LoggerOptions{Level: "chatty"}); err == nil {
		t.Error("unknown level should be rejected")
	}
}

func TestNewLoggerConsoleMode(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LoggerOptions{Console: true, Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("console output %q should carry the message", buf.String())
	}
}
