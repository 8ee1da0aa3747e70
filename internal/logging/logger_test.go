package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

// captureDefault swaps the default logger for one writing JSON to a
// buffer and restores it when the test ends.
func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestFromContext_WithRequestID(t *testing.T) {
	buf := captureDefault(t)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	FromContext(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("log entry missing request_id: %s", out)
	}
}

func TestFromContext_WithoutRequestID(t *testing.T) {
	buf := captureDefault(t)

	FromContext(context.Background()).Info("hello")

	out := buf.String()
	if strings.Contains(out, "request_id") {
		t.Errorf("log entry has request_id without one in context: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
