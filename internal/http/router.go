package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/guttosm/quote-service/docs" // swagger docs

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/metrics"
	"github.com/guttosm/quote-service/internal/middleware"
	"github.com/guttosm/quote-service/internal/service"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit  int
	RateWindow time.Duration
	// APIKeys maps each accepted key to the client it identifies.
	APIKeys           map[string]string
	EnableAuth        bool
	EnableIdempotency bool
	RequestTimeout    time.Duration
	// RouteTimeouts overrides RequestTimeout for individual routes.
	RouteTimeouts map[string]time.Duration
	CORSOrigins       []string
	SwaggerUser       string
	SwaggerPass       string
	// Redis, when set, shares rate limit counters and idempotent replays
	// across instances.
	Redis *redis.Client

	QuoteService         service.QuoteService
	PricingTablesService service.PricingTablesService
	LoggingService       service.LoggingService
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:      100,
		RateWindow:     time.Minute,
		RequestTimeout: 30 * time.Second,
	}
}

var registerValidators sync.Once

// NewRouter creates and configures the Gin router for the quote service.
func NewRouter(healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := dto.RegisterValidators(v); err != nil {
				log.Error().Err(err).Msg("Failed to register request validators")
			}
		}
	})

	router := gin.New()

	configureGlobalMiddleware(router, &cfg)
	registerInfrastructureRoutes(router, healthHandler, &cfg)

	api := router.Group("/api")
	configureAPIMiddleware(api, &cfg)

	if cfg.QuoteService != nil {
		NewQuoteRoutes(cfg.QuoteService, cfg.PricingTablesService).RegisterRoutes(api)
	}

	return router
}

// configureGlobalMiddleware sets up middleware applied to all routes.
func configureGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(cfg.LoggingService, middleware.DefaultUnpersistedPaths...),
		middleware.ErrorHandler(),
	)

	if cfg.LoggingService != nil {
		router.Use(func(c *gin.Context) {
			c.Set(LoggingServiceKey, cfg.LoggingService)
			c.Next()
		})
	}
}

// registerInfrastructureRoutes registers health, metrics, and documentation routes.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		authorized := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.SwaggerUser: cfg.SwaggerPass,
		}))
		authorized.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	} else {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// configureAPIMiddleware sets up middleware for the API group. Authentication
// runs before rate limiting so limits are counted per client.
func configureAPIMiddleware(api *gin.RouterGroup, cfg *RouterConfig) {
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(middleware.Deadlines{Default: cfg.RequestTimeout, Routes: cfg.RouteTimeouts}))
	}

	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		api.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}

	if cfg.RateLimit > 0 {
		api.Use(newRateLimiter(cfg).ClientRateLimit())
	}

	if cfg.EnableIdempotency {
		idem := middleware.DefaultIdempotencyConfig()
		if cfg.Redis != nil {
			idem.Store = middleware.NewRedisReplayStore(cfg.Redis)
		}
		api.Use(middleware.Idempotency(idem))
	}
}

func newRateLimiter(cfg *RouterConfig) *middleware.RateLimiter {
	if cfg.Redis != nil {
		rl, err := middleware.NewRedisRateLimiter(cfg.Redis, cfg.RateLimit, cfg.RateWindow)
		if err == nil {
			return rl
		}
		log.Warn().Err(err).Msg("Redis rate limiter unavailable, limiting per instance")
	}
	return middleware.NewMemoryRateLimiter(cfg.RateLimit, cfg.RateWindow)
}
