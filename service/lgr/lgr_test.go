package lgr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	goxerrors "github.com/mdobak/go-xerrors"
	"go.opentelemetry.io/otel"
	"golang.org/x/xerrors"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		"INFO":   slog.LevelInfo,
		" warn ": slog.LevelWarn,
		"error":  slog.LevelError,
		"chatty": slog.LevelInfo,
		"":       slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleLevelFiltering(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelWarn, Console: &buf})

	logger.Info("hidden")
	logger.Warn("shown", slog.Int("count", 7))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "count=7") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestErrorWithStackIsExpanded(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelDebug, Console: &buf})

	logger.Error("send failed", slog.Any("error", goxerrors.New("device unreachable")))

	out := buf.String()
	if !strings.Contains(out, "error.msg=\"device unreachable\"") {
		t.Errorf("expected expanded error message, got %q", out)
	}
	if !strings.Contains(out, "error.trace=") {
		t.Errorf("expected stack trace attribute, got %q", out)
	}
}

func TestPlainErrorIsUntouched(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelDebug, Console: &buf})

	logger.Error("send failed", slog.Any("error", errors.New("refused")))

	out := buf.String()
	if !strings.Contains(out, "error=refused") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "error.trace") {
		t.Errorf("plain errors carry no trace: %q", out)
	}
}

func TestWrappedStackErrorIsExpanded(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelDebug, Console: &buf})

	cause := goxerrors.WithStackTrace(xerrors.New("no model"), 0)
	logger.Error("crowd sensor mode processor exited", slog.Any("error", xerrors.Errorf("loading detector: %w", cause)))

	out := buf.String()
	if !strings.Contains(out, "error.msg=\"loading detector: no model\"") {
		t.Errorf("expected expanded error message, got %q", out)
	}
	if !strings.Contains(out, "error.trace=") {
		t.Errorf("expected stack trace attribute, got %q", out)
	}
}

func TestSpanIDsAreAttached(t *testing.T) {
	color.NoColor = true

	shutdown := InitTracing()
	defer shutdown(context.Background())

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelDebug, Console: &buf})

	ctx, span := otel.Tracer("lgr-test").Start(context.Background(), "iteration")
	logger.InfoContext(ctx, "count sent", slog.Int("count", 2))
	span.End()

	out := buf.String()
	if !strings.Contains(out, "trace_id="+span.SpanContext().TraceID().String()) {
		t.Errorf("expected trace id, got %q", out)
	}
	if !strings.Contains(out, "span_id="+span.SpanContext().SpanID().String()) {
		t.Errorf("expected span id, got %q", out)
	}

	buf.Reset()
	logger.Info("outside any span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("records outside a span carry no trace id: %q", buf.String())
	}
}
