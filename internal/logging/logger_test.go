package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"bookvoice/internal/services"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerRendersHeaderAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))
	logger = NewComponentLogger(logger, "workflow")

	logger.Info("upload complete",
		String(FieldStage, "upload"),
		String(FieldBookKey, "English/SciFi/BookA"),
		Int("attempt", 1),
	)

	out := buf.String()
	for _, fragment := range []string{"INFO", "[workflow/upload]", "upload complete", "book_key=English/SciFi/BookA", "attempt=1"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output %q", fragment, out)
		}
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))
	logger.Warn("skip extra ebook", String("file", "second book.epub"))
	if !strings.Contains(buf.String(), `file="second book.epub"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, lvl, false))

	ctx := services.WithBookKey(context.Background(), "Series/Book1")
	ctx = services.WithStage(ctx, "convert")
	ctx = services.WithRequestID(ctx, "req-123")

	WithContext(ctx, base).Info("converting")

	out := buf.String()
	for _, fragment := range []string{"Series/Book1", "[convert]", "correlation_id=req-123"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output %q", fragment, out)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}
