package lgr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	goxerrors "github.com/mdobak/go-xerrors"
	"github.com/natefinch/lumberjack"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process-wide structured logger. It logs to the console until
// Init is called with a file.
var Logger = New(Options{Level: slog.LevelInfo, Console: os.Stdout})

type Options struct {
	Level   slog.Leveler
	Console io.Writer
	// File is a rotated JSON log. Empty disables file output.
	File string
}

// Init replaces the global logger using a textual level ("debug", "info"...).
func Init(level string, file string) {
	Logger = New(Options{
		Level:   ParseLevel(level),
		Console: os.Stdout,
		File:    file,
	})
	slog.SetDefault(Logger)
}

func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func New(opts Options) *slog.Logger {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	handlers := []slog.Handler{}
	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level:       opts.Level,
			ReplaceAttr: replaceConsoleAttr,
		}))
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0750); err == nil {
			handlers = append(handlers, slog.NewJSONHandler(&lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // MB
				MaxBackups: 5,
				MaxAge:     7, // days
				Compress:   true,
			}, &slog.HandlerOptions{
				Level:       opts.Level,
				ReplaceAttr: replaceErrorAttr,
			}))
		}
	}

	return slog.New(&traceHandler{next: fanout(handlers)})
}

// traceHandler attaches the active span identifiers, if any, to every record.
type traceHandler struct {
	next slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{next: h.next.WithGroup(name)}
}

type fanoutHandler []slog.Handler

func fanout(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return fanoutHandler(handlers)
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgMagenta),
	slog.LevelInfo:  color.New(color.FgCyan),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

func replaceConsoleAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if level, ok := a.Value.Any().(slog.Level); ok {
			if c, ok := levelColors[level]; ok {
				a.Value = slog.StringValue(c.Sprint(level.String()))
			}
		}
		return a
	}
	return replaceErrorAttr(groups, a)
}

type stackFrame struct {
	Func   string `json:"func"`
	Source string `json:"source"`
	Line   int    `json:"line"`
}

// replaceErrorAttr expands errors that carry a stack trace into a group with
// the message and the frames.
func replaceErrorAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}

	err, ok := a.Value.Any().(error)
	if !ok || err == nil {
		return a
	}

	stack := marshalStack(err)
	if len(stack) == 0 {
		return a
	}

	a.Value = slog.GroupValue(
		slog.String("msg", err.Error()),
		slog.Any("trace", stack),
	)
	return a
}

func marshalStack(err error) []stackFrame {
	callers := goxerrors.StackTrace(err)
	if len(callers) == 0 {
		return nil
	}

	frames := callers.Frames()
	out := make([]stackFrame, len(frames))
	for i, f := range frames {
		out[i] = stackFrame{
			Func:   filepath.Base(f.Function),
			Source: filepath.Join(filepath.Base(filepath.Dir(f.File)), filepath.Base(f.File)),
			Line:   f.Line,
		}
	}
	return out
}
