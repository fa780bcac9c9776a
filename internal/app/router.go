// Package app provides router configuration.
package app

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/http"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter builds the health handler and router configuration.
// rdb may be nil.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, rdb *redis.Client, cfg config.Config) *RouterComponents {
	healthHandler := http.NewHealthHandler()
	if rdb != nil {
		healthHandler.AddOptionalChecker("redis", http.CheckerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	if dbComponents != nil {
		if dbComponents.DB != nil {
			healthHandler.AddChecker("mongodb", http.CheckerFunc(dbComponents.DB.HealthCheck))
		}
		names := make([]string, 0, len(dbComponents.CircuitBreakers))
		for name := range dbComponents.CircuitBreakers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			healthHandler.RegisterCircuitBreaker(name, dbComponents.CircuitBreakers[name])
		}
	}

	routerCfg := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateWindow:        cfg.Server.RateWindow,
		EnableAuth:        cfg.Auth.Enabled,
		APIKeys:           cfg.Auth.APIKeys,
		EnableIdempotency: cfg.Server.EnableIdempotency,
		RequestTimeout:    cfg.Server.RequestTimeout,
		RouteTimeouts:     logQueryTimeouts(cfg.Server.LogQueryTimeout),
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
		Redis:             rdb,
	}
	if services != nil {
		routerCfg.QuoteService = services.Quotes
		routerCfg.PricingTablesService = services.PricingTables
		routerCfg.LoggingService = services.Logging
	}

	return &RouterComponents{
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}

func logQueryTimeouts(d time.Duration) map[string]time.Duration {
	if d <= 0 {
		return nil
	}
	return map[string]time.Duration{
		"/api/logs":             d,
		"/api/quotes/:id/audit": d,
	}
}
