package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/service"
)

// RouteGroup is a set of API routes registered under one router group.
type RouteGroup interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// QuoteRoutes registers the pricing API.
type QuoteRoutes struct {
	quotes *QuoteHandler
	tables *PricingTablesHandler
}

// NewQuoteRoutes creates the quote routes. A nil tables service leaves the
// pricing table endpoints unregistered.
func NewQuoteRoutes(quotes service.QuoteService, tables service.PricingTablesService) *QuoteRoutes {
	r := &QuoteRoutes{quotes: NewQuoteHandler(quotes)}
	if tables != nil {
		r.tables = NewPricingTablesHandler(tables)
	}
	return r
}

// RegisterRoutes registers quote, cost, limit, log and pricing table routes on rg.
func (r *QuoteRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", r.quotes.CreateQuote)
	rg.GET("/quotes/:id", r.quotes.GetQuote)
	rg.GET("/quotes/:id/audit", r.quotes.GetQuoteAudit)
	rg.POST("/costs", r.quotes.EstimateCost)
	rg.GET("/logs", QueryLogs)

	limits := rg.Group("/limits")
	limits.POST("/apply", r.quotes.ApplyLimits)
	limits.POST("/validate", r.quotes.ValidateLimits)

	if r.tables != nil {
		rg.GET("/pricing-tables", r.tables.GetActive)
		rg.PUT("/pricing-tables", r.tables.Update)
		rg.GET("/pricing-tables/history", r.tables.History)
	}
}

var _ RouteGroup = (*QuoteRoutes)(nil)
