package myhttp

import (
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"
)

// NewServerMux returns a ServeMux whose *WithMiddleware registrations are traced, timed and profiled.
func NewServerMux(logger *slog.Logger, httpRequestsDurationMicroSeconds metric.Int64Histogram) *myRouter {
	return &myRouter{
		ServeMux:                         http.NewServeMux(),
		logger:                           logger,
		httpRequestsDurationMicroSeconds: httpRequestsDurationMicroSeconds,
	}
}

// NewLogger builds the JSON logger used by every binary, with keys renamed after the
// OpenTelemetry log data model. A text handler is used when debug is set.
func NewLogger(level slog.Level, debug bool, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: level,
		// https://opentelemetry.io/docs/specs/otel/logs/data-model/
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				a.Key = "severitytext"
			case slog.MessageKey:
				a.Key = "body"
			}
			return a
		},
	}
	if debug {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// ParseLevel reads a level name such as "debug" or "WARN"; empty means info.
func ParseLevel(s string) (slog.Level, error) {
	level := slog.LevelInfo
	if s == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, err
	}
	return level, nil
}
