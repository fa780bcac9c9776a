//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoDB_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := connectTestDB(t)

	t.Run("collections wired", func(t *testing.T) {
		assert.NotNil(t, db.Client)
		assert.NotNil(t, db.Database)
		assert.Equal(t, "pricing_tables", db.PricingTables.Name())
		assert.Equal(t, "quotes", db.Quotes.Name())
		assert.Equal(t, "logs", db.Logs.Name())
	})

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, db.HealthCheck(ctx))
	})

	t.Run("set logs TTL is repeatable", func(t *testing.T) {
		require.NoError(t, db.SetLogsTTL(ctx, 30*24*time.Hour))
		assert.NoError(t, db.SetLogsTTL(ctx, time.Hour))
	})

	t.Run("pricing table versions are unique", func(t *testing.T) {
		cursor, err := db.PricingTables.Indexes().List(ctx)
		require.NoError(t, err)
		var indexes []bson.M
		require.NoError(t, cursor.All(ctx, &indexes))

		var unique bool
		for _, idx := range indexes {
			if idx["name"] == "version_-1" {
				unique, _ = idx["unique"].(bool)
			}
		}
		assert.True(t, unique)
	})

	t.Run("close is bounded", func(t *testing.T) {
		other := connectTestDB(t)
		closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		assert.NoError(t, other.Close(closeCtx))
	})
}
