package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v; raw=%s", err, buf.String())
	}
	return entry
}

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithTransactionID(ctx, "abc123")

	log.Error(ctx, "boom", errors.New("boom"))

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id to be preserved; entry=%v", entry)
	}
	if entry["tran_id"] != "abc123" {
		t.Fatalf("expected tran_id to be preserved; entry=%v", entry)
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatalf("expected stack trace on error; entry=%v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field; entry=%v", entry)
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, WarnStack: true})
	log.Warn(context.Background(), "warny")
	if _, ok := decodeEntry(t, buf)["stack"]; !ok {
		t.Fatal("expected stack when warn stack enabled")
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})
	quiet.Warn(context.Background(), "warny")
	if _, ok := decodeEntry(t, buf)["stack"]; ok {
		t.Fatal("expected no stack when warn stack disabled")
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: buf})
	log.Info(context.Background(), "hidden")
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
}

func TestWithFieldsDoesNotLeakAcrossContexts(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	base := context.Background()
	tagged := log.WithFields(base, map[string]any{"job": "payment-reconcile"})
	log.Info(base, "plain")
	if _, ok := decodeEntry(t, buf)["job"]; ok {
		t.Fatal("expected base context to stay untagged")
	}

	buf.Reset()
	log.Info(tagged, "tagged")
	if decodeEntry(t, buf)["job"] != "payment-reconcile" {
		t.Fatal("expected job field on tagged context")
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" WARN "); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn, got %v", lvl)
	}
}

func TestConsoleFormatWritesPlainText(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: FormatConsole})
	log.Info(log.WithField(context.Background(), "tran_id", "t-1"), "payment confirmed")

	line := buf.String()
	if json.Valid(buf.Bytes()) {
		t.Fatalf("expected console output, got json %s", line)
	}
	if !strings.Contains(line, "payment confirmed") || !strings.Contains(line, "t-1") {
		t.Fatalf("expected message and field in console output, got %q", line)
	}
}
