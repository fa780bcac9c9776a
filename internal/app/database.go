// Package app provides database initialization and setup.
package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/circuitbreaker"
	"github.com/guttosm/quote-service/internal/metrics"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                *repository.MongoDB
	PricingTablesRepo repository.PricingTablesRepositoryInterface
	QuotesRepo        repository.QuotesRepositoryInterface
	LoggingService    service.LoggingService
	// CircuitBreakers is keyed by the name reported on the readiness probe.
	CircuitBreakers map[string]*circuitbreaker.CircuitBreaker
}

// InitializeDatabase connects to MongoDB and builds the breaker-wrapped
// repositories. It returns nil when the database is disabled or unreachable,
// in which case quotes are still served from the built-in tables.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	ctx := context.Background()
	db, err := repository.Connect(ctx, cfg.URI, cfg.DatabaseName,
		repository.WithConnectRetries(cfg.ConnectRetries))
	if err != nil {
		log.Error().Err(err).Msg("MongoDB unavailable, serving quotes without persistence")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	if cfg.LogsTTL > 0 {
		if err := db.SetLogsTTL(ctx, cfg.LogsTTL); err != nil {
			log.Warn().Err(err).Dur("ttl", cfg.LogsTTL).Msg("Failed to set logs TTL index")
		}
	}

	tablesCB := newCircuitBreaker(cfg, "mongodb_pricing_tables")
	quotesCB := newCircuitBreaker(cfg, "mongodb_quotes")
	logsCB := newCircuitBreaker(cfg, "mongodb_logs")

	logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)

	return &DatabaseComponents{
		DB:                db,
		PricingTablesRepo: repository.NewPricingTablesRepositoryWithCircuitBreaker(repository.NewPricingTablesRepository(db), tablesCB),
		QuotesRepo:        repository.NewQuotesRepositoryWithCircuitBreaker(repository.NewQuotesRepository(db), quotesCB),
		LoggingService:    service.NewLoggingService(logsRepo),
		CircuitBreakers: map[string]*circuitbreaker.CircuitBreaker{
			"mongodb_pricing_tables": tablesCB,
			"mongodb_quotes":         quotesCB,
			"mongodb_logs":           logsCB,
		},
	}
}

// newCircuitBreaker builds a breaker that mirrors its state into Prometheus.
func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		IsSuccessful:     healthyStoreAnswer,
		OnStateChange:    reportCircuitState,
	})
}

func healthyStoreAnswer(err error) bool {
	return !repository.IsStoreFailure(err)
}

func reportCircuitState(name string, from, to circuitbreaker.State) {
	metrics.SetCircuitBreakerState(name, int(to))
	if from != to {
		log.Warn().
			Str("circuit", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Circuit breaker state changed")
	}
}
