package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Logger emits structured JSON log lines with a fixed set of fields:
// timestamp, service, hostname, action and request_id, plus an optional
// details map.
type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

func New(service string) *Logger {
	hostname, _ := os.Hostname()

	handler := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	return &Logger{
		service:  service,
		hostname: hostname,
		handler:  handler,
	}
}

// GenerateRequestID returns a fresh id to correlate log lines of one request.
func GenerateRequestID() string {
	return uuid.NewString()
}

type requestIDKey struct{}

// RequestIDKey is the context key the request-logging middleware stores
// the request id under.
var RequestIDKey = requestIDKey{}

func (l *Logger) Info(action, requestID, message string, details map[string]any) {
	l.log(slog.LevelInfo, action, requestID, message, details, nil)
}

func (l *Logger) Debug(action, requestID, message string, details map[string]any) {
	l.log(slog.LevelDebug, action, requestID, message, details, nil)
}

func (l *Logger) Error(action, requestID, message string, err error, details map[string]any) {
	l.log(slog.LevelError, action, requestID, message, details, err)
}

func (l *Logger) log(level slog.Level, action, requestID, message string, details map[string]any, err error) {
	attrs := []slog.Attr{
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
		slog.String("request_id", requestID),
	}

	if err != nil {
		attrs = append(attrs, slog.Group("error",
			slog.String("msg", err.Error()),
			slog.String("stack", string(debug.Stack())),
		))
	}

	if len(details) > 0 {
		attrs = append(attrs, slog.Any("details", details))
	}

	l.handler.LogAttrs(context.TODO(), level, message, attrs...)
}
