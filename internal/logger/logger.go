// Package logger provides structured JSON logging using zerolog.
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is attached to every log line.
const ServiceName = "quote-service"

// Init initializes the global logger. Unknown levels fall back to info.
func Init(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("service", ServiceName).Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", ServiceName).Logger()
}

// Logger returns the global logger instance.
func Logger() zerolog.Logger {
	return log.Logger
}

// ForRequest returns a logger carrying the request and client identifiers.
// Empty values are omitted.
func ForRequest(requestID, clientID string) zerolog.Logger {
	ctx := log.Logger.With()
	if requestID != "" {
		ctx = ctx.Str("request_id", requestID)
	}
	if clientID != "" {
		ctx = ctx.Str("client_id", clientID)
	}
	return ctx.Logger()
}

// WithRequest binds a request logger to ctx so code below the HTTP layer logs
// with the same identifiers.
func WithRequest(ctx context.Context, requestID, clientID string) context.Context {
	l := ForRequest(requestID, clientID)
	return l.WithContext(ctx)
}

// FromContext returns the logger bound by WithRequest.
func FromContext(ctx context.Context) (*zerolog.Logger, bool) {
	l := zerolog.Ctx(ctx)
	return l, l.GetLevel() != zerolog.Disabled
}

// Ctx returns the logger bound to ctx, or the global logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l, ok := FromContext(ctx); ok {
		return l
	}
	l := log.Logger
	return &l
}
