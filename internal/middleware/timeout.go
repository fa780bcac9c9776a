package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/i18n"
	"github.com/guttosm/quote-service/internal/metrics"
)

// DefaultRequestTimeout bounds API requests when no budget is configured.
const DefaultRequestTimeout = 30 * time.Second

// Deadlines maps full route paths ("/api/pricing-tables") to their own
// budget. Routes not listed use Default.
type Deadlines struct {
	Default time.Duration
	Routes  map[string]time.Duration
}

func (d Deadlines) budget(route string) time.Duration {
	if v, ok := d.Routes[route]; ok && v > 0 {
		return v
	}
	if d.Default > 0 {
		return d.Default
	}
	return DefaultRequestTimeout
}

// Timeout puts the route's deadline on the request context. Handlers and
// repositories observe it through ctx. A handler that lets the deadline pass
// without writing is answered 504.
func Timeout(d Deadlines) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		ctx, cancel := context.WithTimeout(c.Request.Context(), d.budget(route))
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		metrics.RecordTimeout(route)
		log := requestLogger(c)
		log.Warn().Str("route", route).Dur("budget", d.budget(route)).Msg("Request deadline exceeded")

		message := i18n.GetTranslator().Translate(i18n.ErrKeyTimeout, i18n.GetLocale(c))
		c.AbortWithStatusJSON(http.StatusGatewayTimeout,
			dto.NewError(dto.ErrCodeTimeout, message).WithRequestID(GetRequestID(c)))
	}
}

// TimeoutWithDuration applies one budget to every route.
func TimeoutWithDuration(timeout time.Duration) gin.HandlerFunc {
	return Timeout(Deadlines{Default: timeout})
}
