package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/service"
)

// Audited pricing actions.
const (
	ActionQuote               = "quote"
	ActionCost                = "cost"
	ActionApplyLimits         = "apply_limits"
	ActionValidateLimits      = "validate_limits"
	ActionUpdatePricingTables = "update_pricing_tables"
)

// QuoteIDField is the audit field copied into LogEntry.QuoteID.
const QuoteIDField = "quote_id"

// AuditLog records a completed pricing action such as a quote issued or a
// pricing tables replacement.
func AuditLog(sink service.LoggingService, c *gin.Context, action, message string, fields map[string]any) {
	if sink == nil {
		return
	}
	shipLog(sink, newAuditEntry(c, "info", action, message, fields))
}

// AuditLogError records a rejected or failed pricing action.
func AuditLogError(sink service.LoggingService, c *gin.Context, action, message string, err error, fields map[string]any) {
	if sink == nil {
		return
	}
	entry := newAuditEntry(c, "error", action, message, fields)
	if err != nil {
		entry.Error = err.Error()
	}
	shipLog(sink, entry)
}

func newAuditEntry(c *gin.Context, level, action, message string, fields map[string]any) *model.LogEntry {
	entry := (&model.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		RequestID: GetRequestID(c),
		ClientID:  GetClientID(c),
		Action:    action,
		Request:   requestInfo(c),
	}).WithFields(fields)

	if quoteID, ok := fields[QuoteIDField].(string); ok {
		entry.QuoteID = quoteID
		delete(entry.Fields, QuoteIDField)
	}
	return entry
}
