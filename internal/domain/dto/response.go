package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/repository"
)

const (
	// ErrCodeInvalidRequest indicates a malformed body or an invalid field.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeUnauthorized indicates a missing or unknown API key.
	ErrCodeUnauthorized = "unauthorized"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeRateLimit indicates rate limit exceeded.
	ErrCodeRateLimit = "rate_limit_exceeded"
	// ErrCodeConflict indicates a conflict with current state.
	ErrCodeConflict = "conflict"
	// ErrCodeTimeout indicates a request timeout.
	ErrCodeTimeout = "timeout"
	// ErrCodeUnsupported indicates a material or process missing from the cost tables.
	ErrCodeUnsupported = "unsupported"
	// ErrCodePriceLimit indicates a strict-mode rejection.
	ErrCodePriceLimit = "price_limit_violated"
	// ErrCodeServiceUnavailable indicates storage is disabled or unreachable.
	ErrCodeServiceUnavailable = "service_unavailable"
)

// SuccessResponse wraps successful API responses with metadata.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data is the quote, cost estimate, limit result or pricing tables.
	Data      interface{} `json:"data" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time   `json:"timestamp" example:"2026-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse represents a standardized error response for the API.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"Validation failed"`
	// Details maps a field (or a limit attribute) to what went wrong.
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2026-01-28T10:00:00Z"`
	TraceID   string            `json:"trace_id,omitempty" example:"trace-123"`
} // @name ErrorResponse

// NewError creates a new ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetails attaches field level details. Empty maps are dropped.
func (e ErrorResponse) WithDetails(details map[string]string) ErrorResponse {
	if len(details) > 0 {
		e.Details = details
	}
	return e
}

// ErrCodeFromStatus returns the appropriate error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnprocessableEntity:
		return ErrCodePriceLimit
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	default:
		return ErrCodeInternal
	}
}

// LimitValidationResponse is returned by POST /api/limits/validate when the price passes.
// @Description Strict limit validation outcome
type LimitValidationResponse struct {
	Valid bool   `json:"valid" example:"true"`
	Tier  string `json:"tier" example:"standard"`
} // @name LimitValidationResponse

// PricingTablesVersionResponse summarises one stored version of the pricing tables.
// @Description Pricing tables version
type PricingTablesVersionResponse struct {
	Version   int       `json:"version" example:"3"`
	Active    bool      `json:"active" example:"true"`
	Materials int       `json:"materials" example:"6"`
	Processes int       `json:"processes" example:"6"`
	CreatedAt time.Time `json:"created_at" example:"2026-01-28T10:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2026-01-28T10:00:00Z"`
	CreatedBy string    `json:"created_by,omitempty" example:"pricing-team"`
} // @name PricingTablesVersionResponse

// NewPricingTablesVersionResponse converts a stored version.
func NewPricingTablesVersionResponse(doc repository.PricingTablesDocument) PricingTablesVersionResponse {
	return PricingTablesVersionResponse{
		Version:   doc.Version,
		Active:    doc.Active,
		Materials: len(doc.Materials),
		Processes: len(doc.Processes),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		CreatedBy: doc.CreatedBy,
	}
}

// NewPricingTablesHistoryResponse converts stored versions, newest first as given.
func NewPricingTablesHistoryResponse(docs []repository.PricingTablesDocument) []PricingTablesVersionResponse {
	out := make([]PricingTablesVersionResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewPricingTablesVersionResponse(doc))
	}
	return out
}

// AuditTrailResponse lists the pricing actions recorded for one quote, newest first.
// @Description Quote audit trail
type AuditTrailResponse struct {
	QuoteID string           `json:"quote_id" example:"0b6c5f0e-8f0e-4a53-9c8e-2d7f1b3c4a5d"`
	Entries []model.LogEntry `json:"entries"`
} // @name AuditTrailResponse
