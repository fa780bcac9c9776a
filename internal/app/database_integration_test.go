//go:build integration

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/testutil"
)

func TestInitializeDatabase_Integration(t *testing.T) {
	ctx := context.Background()
	uri := testutil.MongoURI()

	t.Run("initialize with enabled database", func(t *testing.T) {
		components := InitializeDatabase(integrationDatabaseConfig(uri, testutil.DatabaseName(t)))
		require.NotNil(t, components)
		defer func() { _ = components.DB.Close(ctx) }()

		assert.NotNil(t, components.PricingTablesRepo)
		assert.NotNil(t, components.QuotesRepo)
		assert.NotNil(t, components.LoggingService)
		assert.Len(t, components.CircuitBreakers, 3)
		assert.NoError(t, components.DB.HealthCheck(ctx))
	})

	t.Run("initialize with disabled database", func(t *testing.T) {
		assert.Nil(t, InitializeDatabase(config.DatabaseConfig{Enabled: false}))
	})

	t.Run("pricing tables are seeded once", func(t *testing.T) {
		cfg := config.Config{Database: integrationDatabaseConfig(uri, testutil.DatabaseName(t))}
		components := InitializeDatabase(cfg.Database)
		require.NotNil(t, components)
		defer func() { _ = components.DB.Close(ctx) }()

		for i := 0; i < 2; i++ {
			_, err := InitializeServices(cfg, components, nil)
			require.NoError(t, err)
		}

		history, err := components.PricingTablesRepo.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 1, history[0].Version)
		assert.Equal(t, "system", history[0].CreatedBy)
	})

	t.Run("circuit breakers start closed", func(t *testing.T) {
		components := InitializeDatabase(integrationDatabaseConfig(uri, testutil.DatabaseName(t)))
		require.NotNil(t, components)
		defer func() { _ = components.DB.Close(ctx) }()

		for name, cb := range components.CircuitBreakers {
			stats := cb.GetStats()
			assert.Equal(t, "closed", stats.State, name)
			assert.True(t, stats.IsHealthy, name)
		}
	})
}
