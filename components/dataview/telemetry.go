package dataview

import "context"

// Telemetry records view events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Logger is the structured logger used by views and the service.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }
