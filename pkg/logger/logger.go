package logger

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// Format selects the log encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures a Logger.
type Options struct {
	Level  string
	Format Format
	Output io.Writer
	Prefix string
}

// Logger wraps charmbracelet/log so it satisfies dataview.Logger.
type Logger struct {
	log *charmlog.Logger
}

var _ dataview.Logger = (*Logger)(nil)

// New builds a logger. Unknown levels fall back to info.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
	})
	if opts.Format == FormatJSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return &Logger{log: l}
}

// ParseLevel maps a level name onto a charm level.
func ParseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.log.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.log.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.log.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.log.Error(msg, keyvals...) }

// With returns a child logger carrying keyvals on every entry.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{log: l.log.With(keyvals...)}
}

// Telemetry logs view events at debug level.
type Telemetry struct {
	Logger *Logger
}

var _ dataview.Telemetry = Telemetry{}

// Record implements dataview.Telemetry. Payload keys are emitted in sorted order.
func (t Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t.Logger == nil {
		return
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	keyvals := make([]any, 0, 2*len(keys)+2)
	keyvals = append(keyvals, "event", event)
	for _, k := range keys {
		keyvals = append(keyvals, k, payload[k])
	}
	t.Logger.Debug("telemetry", keyvals...)
}
