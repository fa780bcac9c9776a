package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/service"
)

// DefaultUnpersistedPaths are probe and scrape endpoints kept out of the logs collection.
var DefaultUnpersistedPaths = []string{"/healthz", "/readyz", "/metrics", "/swagger/"}

// RequestLogger writes one console line per request and, when sink is set,
// persists the request through the log batcher. Requests whose path starts
// with one of skipPaths are only written to the console.
func RequestLogger(sink service.LoggingService, skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		route := c.FullPath()
		clientID := GetClientID(c)
		requestID := GetRequestID(c)

		log := requestLogger(c)
		event := log.WithLevel(levelForStatus(status)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status_code", status).
			Int64("duration_ms", latency.Milliseconds()).
			Str("ip", c.ClientIP())
		if route != "" && route != path {
			event = event.Str("route", route)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("HTTP request")

		if sink == nil || hasAnyPrefix(path, skipPaths) {
			return
		}

		info := requestInfo(c)
		info.StatusCode = status
		info.DurationMS = latency.Milliseconds()
		entry := &model.LogEntry{
			Timestamp: start,
			Level:     levelForStatus(status).String(),
			Message:   "HTTP request",
			RequestID: requestID,
			ClientID:  clientID,
			Request:   info,
		}
		if err := c.Errors.Last(); err != nil {
			entry.Error = err.Error()
		}
		shipLog(sink, entry)
	}
}

// requestInfo captures the request line. Route is kept only when it differs
// from the concrete path.
func requestInfo(c *gin.Context) *model.RequestInfo {
	info := &model.RequestInfo{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if route := c.FullPath(); route != info.Path {
		info.Route = route
	}
	return info
}

func levelForStatus(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
