package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultCORSOrigins is used when no origin is configured.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// CORS allows browser clients from origins. An origin may hold one wildcard,
// such as https://*.example.com. A lone "*" opens the API to every origin
// and turns credentials off, since browsers refuse both together.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}

	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Encoding", "Accept-Encoding", "Accept-Language",
			APIKeyHeader, IdempotencyKeyHeader, RequestIDHeader,
		},
		ExposeHeaders: []string{
			RequestIDHeader, RateLimitLimitHeader, RateLimitRemainingHeader, RateLimitResetHeader,
			"Retry-After", IdempotencyReplayedHeader,
		},
		MaxAge: 12 * time.Hour,
	}

	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AllowWildcard = slices.ContainsFunc(origins, func(o string) bool {
		return strings.Contains(o, "*")
	})
	return cors.New(cfg)
}
