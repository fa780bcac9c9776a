package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/i18n"
	"github.com/guttosm/quote-service/internal/middleware"
	"github.com/guttosm/quote-service/internal/service"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// PricingTablesHandler serves the versioned material, process, tier and shipping tables.
type PricingTablesHandler struct {
	tables service.PricingTablesService
}

// NewPricingTablesHandler creates a new PricingTablesHandler instance.
func NewPricingTablesHandler(tables service.PricingTablesService) *PricingTablesHandler {
	return &PricingTablesHandler{tables: tables}
}

// GetActive handles GET /api/pricing-tables requests.
//
// @Summary      Get the active pricing tables
// @Description  Returns the tables quotes are currently priced with. Without storage these are the built-in defaults.
// @Tags         Pricing Tables
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingTables} "Active tables"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Security     ApiKeyAuth
// @Router       /api/pricing-tables [get]
func (h *PricingTablesHandler) GetActive(c *gin.Context) {
	builder := NewResponseBuilder(c)

	tables, err := h.tables.Active(c.Request.Context())
	if err != nil {
		respondError(builder, err)
		return
	}
	builder.SuccessOK(tables)
}

// Update handles PUT /api/pricing-tables requests.
//
// @Summary      Replace the pricing tables
// @Description  Validates the tables and stores them as the next active version. Memoized quotes are dropped.
// @Tags         Pricing Tables
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        request body dto.UpdatePricingTablesRequest true "New tables"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingTables} "Stored version"
// @Failure      400 {object} dto.ErrorResponse "Invalid tables"
// @Failure      503 {object} dto.ErrorResponse "Storage not configured or unavailable"
// @Security     ApiKeyAuth
// @Router       /api/pricing-tables [put]
func (h *PricingTablesHandler) Update(c *gin.Context) {
	builder := NewResponseBuilder(c)

	body, err := BindJSON[dto.UpdatePricingTablesRequest](c)
	if err != nil {
		respondBindError(builder, err)
		return
	}

	updatedBy := body.UpdatedBy
	if updatedBy == "" {
		updatedBy = middleware.GetClientID(c)
	}

	stored, err := h.tables.Update(c.Request.Context(), body.Tables, updatedBy)
	if err != nil {
		middleware.AuditLogError(auditLogger(c), c, middleware.ActionUpdatePricingTables, "Pricing tables rejected", err, nil)
		respondError(builder, err)
		return
	}

	middleware.AuditLog(auditLogger(c), c, middleware.ActionUpdatePricingTables, "Pricing tables updated", map[string]interface{}{
		"version":    stored.Version,
		"updated_by": updatedBy,
		"materials":  len(stored.Materials),
		"processes":  len(stored.Processes),
	})
	builder.SuccessOK(stored)
}

// History handles GET /api/pricing-tables/history requests.
//
// @Summary      List pricing table versions
// @Tags         Pricing Tables
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        limit query int false "Maximum number of versions" default(20) maximum(100)
// @Success      200 {object} dto.SuccessResponse{data=[]dto.PricingTablesVersionResponse} "Versions, newest first"
// @Failure      400 {object} dto.ErrorResponse "Invalid limit"
// @Failure      503 {object} dto.ErrorResponse "Storage not configured or unavailable"
// @Security     ApiKeyAuth
// @Router       /api/pricing-tables/history [get]
func (h *PricingTablesHandler) History(c *gin.Context) {
	builder := NewResponseBuilder(c)

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		builder.ErrorDetails(http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyValidation, err,
			map[string]string{"limit": "must be an integer between 1 and " + strconv.Itoa(maxHistoryLimit)})
		return
	}

	docs, err := h.tables.History(c.Request.Context(), limit)
	if err != nil {
		respondError(builder, err)
		return
	}
	builder.SuccessOK(dto.NewPricingTablesHistoryResponse(docs))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if limit < 1 || limit > maxHistoryLimit {
		return 0, strconv.ErrRange
	}
	return limit, nil
}
