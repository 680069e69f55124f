//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"ramadan-timetable-bot/internal/config"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, false, &buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithTgID(ctx, 42)
	With(ctx, base).Info().Msg("hello")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if rec["trace_id"] != "trace-1" {
		t.Errorf("expected trace_id field, got %v", rec["trace_id"])
	}
	if rec["tg_id"] != float64(42) {
		t.Errorf("expected tg_id 42, got %v", rec["tg_id"])
	}
	if TraceID(ctx) != "trace-1" || TgID(ctx) != 42 {
		t.Error("context accessors returned unexpected values")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Error("expected warn to be written")
	}
}

func TestRedact(t *testing.T) {
	if Redact("123456:ABCDEFGHIJ", true) != "123456:ABCDEFGHIJ" {
		t.Error("dev mode must not redact")
	}
	if got := Redact("123456:ABCDEFGHIJ", false); got != "1234...IJ" {
		t.Errorf("unexpected redaction: %s", got)
	}
	if Redact("short", false) != "***" {
		t.Error("short values must be fully hidden")
	}
	if NewTraceID() == NewTraceID() {
		t.Error("trace ids must be unique")
	}
}
