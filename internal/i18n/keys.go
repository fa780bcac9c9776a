package i18n

// Error message translation keys.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyUnauthorized       = "error.unauthorized"
	ErrKeyAPIKeyRequired     = "error.api_key_required"
	ErrKeyInvalidAPIKey      = "error.invalid_api_key"
	ErrKeyNotFound           = "error.not_found"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
	ErrKeyTimeout            = "error.timeout"
	ErrKeyServiceUnavailable = "error.service_unavailable"

	// ErrKeyValidation covers field-level validation failures of a quote, cost or limits request.
	ErrKeyValidation = "error.validation"
	// ErrKeyUnsupportedMaterial is returned when the material is not in the active cost table.
	ErrKeyUnsupportedMaterial = "error.unsupported_material"
	// ErrKeyUnsupportedProcess is returned when the process is not in the active cost table.
	ErrKeyUnsupportedProcess = "error.unsupported_process"
	// ErrKeyPriceLimit is returned by strict validation when a price breaches a business limit.
	ErrKeyPriceLimit = "error.price_limit"
	// ErrKeyQuoteNotFound is returned when a stored quote does not exist.
	ErrKeyQuoteNotFound = "error.quote_not_found"
	// ErrKeyStorageDisabled is returned by endpoints that need MongoDB when it is not configured.
	ErrKeyStorageDisabled = "error.storage_disabled"
)
