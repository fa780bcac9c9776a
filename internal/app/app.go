// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/http"
	"github.com/guttosm/quote-service/internal/middleware"
)

// Application is the wired HTTP router plus the resources it owns.
type Application struct {
	Router   *gin.Engine
	services *ServiceComponents
	db       *DatabaseComponents
	redis    *redis.Client
}

// InitializeApp creates and wires all application dependencies.
// It fails only on invalid configuration; an unreachable database degrades
// to in-memory pricing tables without persistence.
func InitializeApp(cfg config.Config) (*Application, error) {
	InitializeLogger(cfg.Log)

	dbComponents := InitializeDatabase(cfg.Database)

	rdb := InitializeRedis(cfg.Redis)

	services, err := InitializeServices(cfg, dbComponents, rdb)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		if dbComponents != nil {
			_ = dbComponents.DB.Close(context.Background())
		}
		return nil, err
	}

	routerComponents := InitializeRouter(services, dbComponents, rdb, cfg)

	return &Application{
		Router:   http.NewRouter(routerComponents.HealthHandler, routerComponents.Config),
		services: services,
		db:       dbComponents,
		redis:    rdb,
	}, nil
}

// Close flushes pending request logs and releases the database and Redis
// connections.
func (a *Application) Close(ctx context.Context) {
	middleware.StopLogBatcher()
	if a.services != nil && a.services.Quotes != nil {
		a.services.Quotes.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}
	if a.db != nil && a.db.DB != nil {
		if err := a.db.DB.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to close MongoDB connection")
		}
	}
}
