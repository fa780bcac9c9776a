package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/guttosm/quote-service/internal/service"
)

func registeredRoutes(router *gin.Engine) map[string]bool {
	routes := make(map[string]bool)
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestQuoteRoutes_RegisterRoutes(t *testing.T) {
	quoteRoutes := []string{
		http.MethodPost + " /api/quotes",
		http.MethodGet + " /api/quotes/:id",
		http.MethodGet + " /api/quotes/:id/audit",
		http.MethodPost + " /api/costs",
		http.MethodGet + " /api/logs",
		http.MethodPost + " /api/limits/apply",
		http.MethodPost + " /api/limits/validate",
	}
	tableRoutes := []string{
		http.MethodGet + " /api/pricing-tables",
		http.MethodPut + " /api/pricing-tables",
		http.MethodGet + " /api/pricing-tables/history",
	}

	tests := []struct {
		name       string
		tables     service.PricingTablesService
		withTables bool
	}{
		{name: "with pricing tables service", tables: service.NewPricingTablesService(nil), withTables: true},
		{name: "without pricing tables service", tables: nil, withTables: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			NewQuoteRoutes(service.NewQuoteService(), tt.tables).RegisterRoutes(router.Group("/api"))

			routes := registeredRoutes(router)
			for _, r := range quoteRoutes {
				assert.True(t, routes[r], r)
			}
			for _, r := range tableRoutes {
				assert.Equal(t, tt.withTables, routes[r], r)
			}
		})
	}
}
