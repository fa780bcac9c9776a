package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/guttosm/quote-service/internal/circuitbreaker"
	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/i18n"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service"
)

// respondError maps a service error onto its HTTP status, code and details.
func respondError(b *ResponseBuilder, err error) {
	var limitErr model.LimitError

	switch {
	case errors.Is(err, model.ErrInvalidInput):
		b.ErrorDetails(http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyValidation, err, dto.ValidationDetails(err))
	case errors.Is(err, model.ErrUnsupportedMaterial):
		b.ErrorDetails(http.StatusUnprocessableEntity, dto.ErrCodeUnsupported, i18n.ErrKeyUnsupportedMaterial, err, nil)
	case errors.Is(err, model.ErrUnsupportedProcess):
		b.ErrorDetails(http.StatusUnprocessableEntity, dto.ErrCodeUnsupported, i18n.ErrKeyUnsupportedProcess, err, nil)
	case errors.As(err, &limitErr):
		b.ErrorDetails(http.StatusUnprocessableEntity, dto.ErrCodePriceLimit, i18n.ErrKeyPriceLimit, err, dto.LimitErrorDetails(limitErr))
	case errors.Is(err, repository.ErrQuoteNotFound):
		b.Error(http.StatusNotFound, i18n.ErrKeyQuoteNotFound, nil)
	case errors.Is(err, service.ErrRepositoryNotConfigured):
		b.Error(http.StatusServiceUnavailable, i18n.ErrKeyStorageDisabled, err)
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		b.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		b.Error(http.StatusGatewayTimeout, i18n.ErrKeyTimeout, err)
	default:
		b.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
	}
}

// respondBindError answers a body that failed to decode or validate.
func respondBindError(b *ResponseBuilder, err error) {
	if details := dto.ValidationDetails(err); details != nil {
		b.ErrorDetails(http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyValidation, err, details)
		return
	}
	b.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
}
