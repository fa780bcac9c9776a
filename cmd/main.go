// Package main is the entry point for the quote-service application.
//
// @title           Quote Service API
// @version         1.0.0
// @description     Instant quotes for custom manufactured parts.
//
//	Parts are costed from material, process and complexity, then priced across the
//	expedited, standard, economy and domestic economy tiers with business limits enforced.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/quote-service
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key identifying the client. Required if authentication is enabled.
//
// @tag.name        Quotes
// @tag.description Part quotes across all pricing tiers
//
// @tag.name        Costs
// @tag.description Manufacturing cost estimates
//
// @tag.name        Limits
// @tag.description Business price limit enforcement and validation
//
// @tag.name        Pricing Tables
// @tag.description Versioned material, process, tier and shipping tables
//
// @tag.name        Logs
// @tag.description Request logs and quote audit trails
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/app"
)

func main() {
	cfg := config.Load()

	application, err := app.InitializeApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := app.NewServer(application.Router, cfg.Server)
	server.OnShutdown(application.Close)

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
