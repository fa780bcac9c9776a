// Package app provides service initialization.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/metrics"
	"github.com/guttosm/quote-service/internal/middleware"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service"
	"github.com/guttosm/quote-service/internal/service/cache"
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Quotes        *service.QuoteServiceImpl
	PricingTables *service.PricingTablesServiceImpl
	Logging       service.LoggingService
}

// InitializeServices builds the pricing services. Database components are optional;
// without them quotes are priced with the built-in tables and never stored.
// A non-nil rdb shares computed quotes between replicas.
func InitializeServices(cfg config.Config, db *DatabaseComponents, rdb *redis.Client) (*ServiceComponents, error) {
	limits, err := cfg.Pricing.Limits()
	if err != nil {
		return nil, fmt.Errorf("load pricing limits: %w", err)
	}

	var tablesRepo repository.PricingTablesRepositoryInterface
	var quotesRepo repository.QuotesRepositoryInterface
	var logging service.LoggingService
	if db != nil {
		tablesRepo = db.PricingTablesRepo
		quotesRepo = db.QuotesRepo
		logging = db.LoggingService
	}

	var quotes *service.QuoteServiceImpl
	tables := service.NewPricingTablesService(tablesRepo,
		service.WithRefreshInterval(cfg.Database.TablesRefresh),
		service.WithOnUpdate(func(t model.PricingTables) {
			metrics.SetPricingTablesVersion(t.Version)
			quotes.InvalidateCache()
		}),
	)

	opts := []service.Option{
		service.WithTables(tables),
		service.WithLimits(limits),
		service.WithStrict(cfg.Pricing.Strict),
	}
	if quotesRepo != nil {
		opts = append(opts, service.WithQuoteRepository(quotesRepo))
	}
	if cfg.Cache.Size > 0 {
		opts = append(opts, service.WithCache(cfg.Cache.Size, cfg.Cache.TTL))
	}
	shared := rdb != nil && cfg.Cache.Shared
	if shared {
		opts = append(opts, service.WithSharedCache(cache.NewRedis(rdb, cfg.Cache.TTL)))
	}
	quotes = service.NewQuoteService(opts...)

	if tablesRepo != nil {
		seedPricingTables(tables)
	}
	if logging != nil {
		middleware.StartLogBatcher(logging, middleware.DefaultLogBatcherConfig())
	}

	log.Info().
		Bool("limits", !limits.IsEmpty()).
		Bool("strict", cfg.Pricing.Strict).
		Bool("persistence", quotesRepo != nil).
		Int("cache_size", cfg.Cache.Size).
		Bool("shared_cache", shared).
		Msg("Quote services initialized")

	return &ServiceComponents{
		Quotes:        quotes,
		PricingTables: tables,
		Logging:       logging,
	}, nil
}

// seedPricingTables stores the built-in tables on first boot and publishes the active version.
func seedPricingTables(tables service.PricingTablesService) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tables.Seed(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to seed pricing tables")
		return
	}
	active, err := tables.Active(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active pricing tables")
		return
	}
	metrics.SetPricingTablesVersion(active.Version)
}
