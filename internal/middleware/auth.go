package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/i18n"
	"github.com/guttosm/quote-service/internal/logger"
)

const (
	// APIKeyHeader is the HTTP header name for API key authentication.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery is the query parameter name for API key authentication.
	APIKeyQuery = "api_key"
	// ClientIDKey is the gin context key holding the authenticated client.
	ClientIDKey = "client_id"
)

// APIKeyAuth returns a middleware that resolves the caller's API key to a
// client ID. The key is read from the X-API-Key header, then from the api_key
// query parameter. An empty clients map disables authentication.
func APIKeyAuth(clients map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(clients) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyQuery)
		}

		if key == "" {
			abortUnauthorized(c, i18n.ErrKeyAPIKeyRequired)
			return
		}

		clientID, ok := clients[key]
		if !ok {
			abortUnauthorized(c, i18n.ErrKeyInvalidAPIKey)
			return
		}

		c.Set(ClientIDKey, clientID)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), GetRequestID(c), clientID))
		c.Next()
	}
}

// GetClientID returns the client resolved by APIKeyAuth, or "" when the
// request is anonymous.
func GetClientID(c *gin.Context) string {
	return c.GetString(ClientIDKey)
}

func abortUnauthorized(c *gin.Context, key string) {
	message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
	errorResp := dto.NewError(dto.ErrCodeUnauthorized, message).
		WithRequestID(GetRequestID(c))
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResp)
}
