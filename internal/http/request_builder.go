package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/i18n"
	"github.com/guttosm/quote-service/internal/middleware"
)

// envelopes recycles response envelopes. Gin serialises synchronously, so an
// envelope can go back as soon as c.JSON returns.
type envelopes[T any] struct {
	pool sync.Pool
}

func (e *envelopes[T]) get() *T {
	if v, ok := e.pool.Get().(*T); ok {
		return v
	}
	return new(T)
}

func (e *envelopes[T]) put(v *T) {
	var zero T
	*v = zero
	e.pool.Put(v)
}

var (
	successEnvelopes envelopes[dto.SuccessResponse]
	errorEnvelopes   envelopes[dto.ErrorResponse]
)

// BindJSON decodes and validates the body of c into a T.
// Binding tags are checked by gin's validator.
func BindJSON[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// BindQuery decodes and validates the query string into a T.
func BindQuery[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ResponseBuilder writes the API envelopes for one request.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a new response builder for the given context.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success sends data wrapped in a SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data any) {
	resp := successEnvelopes.get()
	resp.Data = data
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	b.c.JSON(statusCode, resp)
	successEnvelopes.put(resp)
}

// SuccessOK sends a 200 OK response with the given data.
func (b *ResponseBuilder) SuccessOK(data any) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends a 201 Created response with the given data.
func (b *ResponseBuilder) SuccessCreated(data any) {
	b.Success(http.StatusCreated, data)
}

// Error aborts with a translated message and the code matching statusCode.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.ErrorDetails(statusCode, dto.ErrCodeFromStatus(statusCode), messageKey, err, nil)
}

// ErrorDetails aborts with an explicit error code and field details.
// err, when set, is attached to the context for the error handler to log.
func (b *ResponseBuilder) ErrorDetails(statusCode int, code, messageKey string, err error, details map[string]string) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	b.abort(statusCode, code, message, err, details)
}

// ErrorWithMessage aborts with an untranslated message.
func (b *ResponseBuilder) ErrorWithMessage(statusCode int, message string, err error) {
	b.abort(statusCode, dto.ErrCodeFromStatus(statusCode), message, err, nil)
}

func (b *ResponseBuilder) abort(statusCode int, code, message string, err error, details map[string]string) {
	resp := errorEnvelopes.get()
	resp.Error = code
	resp.Message = message
	resp.Details = details
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	if err != nil {
		_ = b.c.Error(err)
	}

	b.c.AbortWithStatusJSON(statusCode, resp)
	errorEnvelopes.put(resp)
}
