package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/middleware"
	"github.com/guttosm/quote-service/internal/service"
)

// LoggingServiceKey is the context key the router stores the audit logging service under.
const LoggingServiceKey = "logging_service"

// QuoteHandler serves quotes, cost estimates and limit checks.
type QuoteHandler struct {
	quotes service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler instance.
func NewQuoteHandler(quotes service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// auditLogger returns the logging service set by the router, if any.
func auditLogger(c *gin.Context) service.LoggingService {
	if v, exists := c.Get(LoggingServiceKey); exists {
		if ls, ok := v.(service.LoggingService); ok {
			return ls
		}
	}
	return nil
}

// CreateQuote handles POST /api/quotes requests.
//
// @Summary      Quote a fabrication order
// @Description  Costs the part, prices it in all four service tiers and enforces the pricing limits. Prices that breach a limit are corrected and the corrections reported, or rejected with 422 when strict is set. Supports idempotency via the Idempotency-Key header.
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        request body dto.QuoteRequest true "Order"
// @Success      201 {object} dto.SuccessResponse{data=model.Quote} "Quote issued"
// @Failure      400 {object} dto.ErrorResponse "Invalid field"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      422 {object} dto.ErrorResponse "Unsupported material or process, or a strict limit violation"
// @Failure      429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	builder := NewResponseBuilder(c)

	body, err := BindJSON[dto.QuoteRequest](c)
	if err != nil {
		respondBindError(builder, err)
		return
	}
	req, err := body.ToModel(middleware.GetClientID(c))
	if err != nil {
		respondError(builder, err)
		return
	}

	fields := map[string]any{
		"material":      string(req.Part.Material),
		"process":       string(req.Part.Process),
		"quantity":      req.Quantity,
		"shipping_zone": int(req.ShippingZone),
	}

	quote, err := h.quotes.Quote(c.Request.Context(), req)
	if err != nil {
		middleware.AuditLogError(auditLogger(c), c, middleware.ActionQuote, "Quote rejected", err, fields)
		respondError(builder, err)
		return
	}

	cheapest, _ := quote.Pricing.Cheapest()
	fields[middleware.QuoteIDField] = quote.ID
	fields["cheapest_tier"] = string(cheapest)
	fields["violations"] = quote.ViolationCount()
	fields["was_adjusted"] = quote.WasAdjusted()
	middleware.AuditLog(auditLogger(c), c, middleware.ActionQuote, "Quote issued", fields)

	builder.SuccessCreated(quote)
}

// GetQuote handles GET /api/quotes/:id requests.
//
// @Summary      Get a stored quote
// @Tags         Quotes
// @Produce      json
// @Param        id path string true "Quote ID"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=model.Quote} "Stored quote"
// @Failure      404 {object} dto.ErrorResponse "Quote not found"
// @Failure      503 {object} dto.ErrorResponse "Storage not configured or unavailable"
// @Security     ApiKeyAuth
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	builder := NewResponseBuilder(c)

	quote, err := h.quotes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(builder, err)
		return
	}
	builder.SuccessOK(quote)
}

// GetQuoteAudit handles GET /api/quotes/:id/audit requests.
//
// @Summary      Get the audit trail of a quote
// @Description  Lists the pricing actions logged for the quote, newest first. Request logs are left out.
// @Tags         Quotes
// @Produce      json
// @Param        id path string true "Quote ID"
// @Param        limit query int false "Maximum entries (default 50, max 500)"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=dto.AuditTrailResponse} "Audit trail"
// @Failure      400 {object} dto.ErrorResponse "Invalid limit"
// @Failure      503 {object} dto.ErrorResponse "Log storage not configured or unavailable"
// @Security     ApiKeyAuth
// @Router       /api/quotes/{id}/audit [get]
func (h *QuoteHandler) GetQuoteAudit(c *gin.Context) {
	builder := NewResponseBuilder(c)

	logs := auditLogger(c)
	if logs == nil {
		respondError(builder, service.ErrRepositoryNotConfigured)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(builder, model.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	quoteID := c.Param("id")
	trail, err := logs.QuoteAuditTrail(c.Request.Context(), quoteID, limit)
	if err != nil {
		respondError(builder, err)
		return
	}
	builder.SuccessOK(dto.AuditTrailResponse{QuoteID: quoteID, Entries: trail})
}

// EstimateCost handles POST /api/costs requests.
//
// @Summary      Estimate manufacturing cost
// @Description  Returns the cost breakdown of one part and the cost range between the minimum and maximum complexity scores.
// @Tags         Costs
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        request body dto.CostRequest true "Part"
// @Success      200 {object} dto.SuccessResponse{data=service.CostEstimate} "Cost estimate"
// @Failure      400 {object} dto.ErrorResponse "Invalid field"
// @Failure      422 {object} dto.ErrorResponse "Unsupported material or process"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/costs [post]
func (h *QuoteHandler) EstimateCost(c *gin.Context) {
	builder := NewResponseBuilder(c)

	body, err := BindJSON[dto.CostRequest](c)
	if err != nil {
		respondBindError(builder, err)
		return
	}
	part, err := body.Part.ToModel()
	if err != nil {
		respondError(builder, err)
		return
	}

	estimate, err := h.quotes.Cost(c.Request.Context(), part)
	if err != nil {
		respondError(builder, err)
		return
	}

	middleware.AuditLog(auditLogger(c), c, middleware.ActionCost, "Cost estimated", map[string]any{
		"material":   string(part.Material),
		"process":    string(part.Process),
		"total_cost": estimate.Breakdown.TotalCost.StringFixed(2),
	})
	builder.SuccessOK(estimate)
}

// ApplyLimits handles POST /api/limits/apply requests.
//
// @Summary      Correct a tier price against pricing limits
// @Description  Raises the price until every limit is met and lists each correction. Omitted limits fall back to the server limits.
// @Tags         Limits
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        request body dto.LimitsCheckRequest true "Price breakdown and limits"
// @Success      200 {object} dto.SuccessResponse{data=model.LimitResult} "Corrected price"
// @Failure      400 {object} dto.ErrorResponse "Invalid field"
// @Security     ApiKeyAuth
// @Router       /api/limits/apply [post]
func (h *QuoteHandler) ApplyLimits(c *gin.Context) {
	builder := NewResponseBuilder(c)

	breakdown, req, limits, ok := bindLimitsCheck(c, builder)
	if !ok {
		return
	}

	result := h.quotes.ApplyLimits(breakdown, req, limits)

	middleware.AuditLog(auditLogger(c), c, middleware.ActionApplyLimits, "Limits applied", map[string]any{
		"tier":         string(breakdown.Tier),
		"violations":   len(result.Violations),
		"was_adjusted": result.WasAdjusted,
	})
	builder.SuccessOK(result)
}

// ValidateLimits handles POST /api/limits/validate requests.
//
// @Summary      Validate a tier price strictly
// @Description  Accepts the price unchanged or rejects it with the first violated limit.
// @Tags         Limits
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        request body dto.LimitsCheckRequest true "Price breakdown and limits"
// @Success      200 {object} dto.SuccessResponse{data=dto.LimitValidationResponse} "Price passes every limit"
// @Failure      400 {object} dto.ErrorResponse "Invalid field"
// @Failure      422 {object} dto.ErrorResponse "Limit violated"
// @Security     ApiKeyAuth
// @Router       /api/limits/validate [post]
func (h *QuoteHandler) ValidateLimits(c *gin.Context) {
	builder := NewResponseBuilder(c)

	breakdown, req, limits, ok := bindLimitsCheck(c, builder)
	if !ok {
		return
	}

	if err := h.quotes.ValidateLimits(breakdown, req, limits); err != nil {
		middleware.AuditLogError(auditLogger(c), c, middleware.ActionValidateLimits, "Price rejected", err, map[string]any{
			"tier": string(breakdown.Tier),
		})
		respondError(builder, err)
		return
	}

	builder.SuccessOK(dto.LimitValidationResponse{Valid: true, Tier: string(breakdown.Tier)})
}

func bindLimitsCheck(c *gin.Context, builder *ResponseBuilder) (model.PriceBreakdown, model.PricingRequest, *model.PricingLimits, bool) {
	body, err := BindJSON[dto.LimitsCheckRequest](c)
	if err != nil {
		respondBindError(builder, err)
		return model.PriceBreakdown{}, model.PricingRequest{}, nil, false
	}
	breakdown, req, limits, err := body.ToModel()
	if err != nil {
		respondError(builder, err)
		return model.PriceBreakdown{}, model.PricingRequest{}, nil, false
	}
	return breakdown, req, limits, true
}
