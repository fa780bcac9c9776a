// Package middleware holds the gin middleware of the quote API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/quote-service/internal/logger"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin context key holding the request ID.
	RequestIDKey = "request_id"

	maxRequestIDLength = 128
)

// RequestID tags every request with an ID. A well-formed X-Request-ID from the
// caller is kept, anything else is replaced with a new UUID. The request
// context carries a logger with the ID for the layers below.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), id, ""))
		c.Next()
	}
}

// validRequestID accepts up to 128 visible ASCII characters.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID, or "" outside the RequestID middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// requestLogger returns the logger bound to the request, or one built from
// the gin context when no middleware bound one.
func requestLogger(c *gin.Context) *zerolog.Logger {
	if c.Request != nil {
		if l, ok := logger.FromContext(c.Request.Context()); ok {
			return l
		}
	}
	l := logger.ForRequest(GetRequestID(c), GetClientID(c))
	return &l
}
