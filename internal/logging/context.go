package logging

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithSession creates a child logger with a session_id field
func WithSession(ctx context.Context, sessionID string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("session_id", sessionID).Logger()
	return WithContext(ctx, childLogger)
}

// TruncateURL shortens long URLs for log lines to at most max bytes,
// cutting on a rune boundary.
func TruncateURL(url string, max int) string {
	if max <= 3 || len(url) <= max {
		return url
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(url[cut]) {
		cut--
	}
	return url[:cut] + "..."
}
