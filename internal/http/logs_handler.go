package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/service"
)

// QueryLogs handles GET /api/logs requests.
//
// @Summary      Search request and audit logs
// @Tags         Logs
// @Produce      json
// @Param        quote_id query string false "Quote ID"
// @Param        request_id query string false "Request ID"
// @Param        client_id query string false "Client ID"
// @Param        action query string false "Audit action, e.g. quote or apply_limits"
// @Param        level query string false "Log level"
// @Param        since query string false "Earliest timestamp (RFC 3339)"
// @Param        until query string false "Latest timestamp (RFC 3339)"
// @Param        limit query int false "Page size" default(50) maximum(500)
// @Param        skip query int false "Entries to skip"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=model.LogPage} "Matching entries, newest first"
// @Failure      400 {object} dto.ErrorResponse "Invalid filter"
// @Failure      503 {object} dto.ErrorResponse "Log storage not configured or unavailable"
// @Security     ApiKeyAuth
// @Router       /api/logs [get]
func QueryLogs(c *gin.Context) {
	builder := NewResponseBuilder(c)

	logs := auditLogger(c)
	if logs == nil {
		respondError(builder, service.ErrRepositoryNotConfigured)
		return
	}

	query, err := BindQuery[dto.LogQueryRequest](c)
	if err != nil {
		respondBindError(builder, err)
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		respondError(builder, err)
		return
	}

	page, err := logs.QueryLogs(c.Request.Context(), filter)
	if err != nil {
		respondError(builder, err)
		return
	}
	builder.SuccessOK(page)
}
