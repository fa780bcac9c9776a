//go:build !integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-service/config"
	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/middleware"
	"github.com/guttosm/quote-service/internal/mocks"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service"
	"github.com/guttosm/quote-service/internal/service/cache"
)

func sampleQuoteRequest() service.QuoteRequest {
	return service.QuoteRequest{
		Part: model.PartSpecification{
			Dimensions: model.PartDimensions{
				LengthMM: decimal.NewFromInt(100),
				WidthMM:  decimal.NewFromInt(50),
				HeightMM: decimal.NewFromInt(25),
			},
			ComplexityScore: decimal.RequireFromString("2.5"),
			Material:        model.MaterialAluminum,
			Process:         model.ProcessCNCMachining,
		},
		Quantity:     10,
		CustomerTier: model.CustomerTierStandard,
		ShippingZone: model.Zone1,
	}
}

func TestInitializeServices(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantErr  bool
		validate func(*testing.T, *ServiceComponents)
	}{
		{
			name: "creates services with default config",
			validate: func(t *testing.T, components *ServiceComponents) {
				assert.NotNil(t, components.Quotes)
				assert.NotNil(t, components.PricingTables)
				assert.Nil(t, components.Logging)
			},
		},
		{
			name: "creates services with cache enabled",
			cfg:  config.Config{Cache: config.CacheConfig{Size: 100, TTL: time.Minute}},
			validate: func(t *testing.T, components *ServiceComponents) {
				first, err := components.Quotes.Quote(context.Background(), sampleQuoteRequest())
				require.NoError(t, err)
				second, err := components.Quotes.Quote(context.Background(), sampleQuoteRequest())
				require.NoError(t, err)
				assert.Equal(t, first.ID, second.ID)
			},
		},
		{
			name: "applies configured limits",
			cfg:  config.Config{Pricing: config.PricingConfig{MinTotalPrice: "100000"}},
			validate: func(t *testing.T, components *ServiceComponents) {
				quote, err := components.Quotes.Quote(context.Background(), sampleQuoteRequest())
				require.NoError(t, err)
				assert.True(t, quote.Pricing.Standard.FinalPrice.GreaterThanOrEqual(decimal.NewFromInt(100000)))
				assert.NotEmpty(t, quote.Limits)
			},
		},
		{
			name: "strict limits reject the quote",
			cfg:  config.Config{Pricing: config.PricingConfig{MinTotalPrice: "100000", Strict: true}},
			validate: func(t *testing.T, components *ServiceComponents) {
				_, err := components.Quotes.Quote(context.Background(), sampleQuoteRequest())
				var limitErr model.LimitError
				assert.ErrorAs(t, err, &limitErr)
			},
		},
		{
			name:    "invalid limits fail",
			cfg:     config.Config{Pricing: config.PricingConfig{MinMarginPercentage: "lots"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components, err := InitializeServices(tt.cfg, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, components)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, components)
			tt.validate(t, components)
		})
	}
}

func TestInitializeServices_WithDatabase(t *testing.T) {
	t.Run("seeds tables when none are stored", func(t *testing.T) {
		tablesRepo := new(mocks.MockPricingTablesRepositoryInterface)
		tablesRepo.Test(t)
		stored := repository.NewPricingTablesDocument(service.DefaultPricingTables())
		stored.Version = 1
		stored.Active = true

		tablesRepo.On("GetActive", mock.Anything).Return(nil, nil).Once()
		tablesRepo.On("Create", mock.Anything, mock.AnythingOfType("model.PricingTables"), "system").Return(stored, nil).Once()
		tablesRepo.On("GetActive", mock.Anything).Return(stored, nil)

		db := &DatabaseComponents{
			PricingTablesRepo: tablesRepo,
			QuotesRepo:        new(mocks.MockQuotesRepositoryInterface),
			LoggingService:    mocks.NewMockLoggingService(t),
		}
		defer middleware.StopLogBatcher()

		components, err := InitializeServices(config.Config{}, db, nil)
		require.NoError(t, err)
		assert.NotNil(t, components.Logging)

		active, err := components.PricingTables.Active(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, active.Version)
		tablesRepo.AssertExpectations(t)
	})

	t.Run("table updates clear cached quotes", func(t *testing.T) {
		tablesRepo := new(mocks.MockPricingTablesRepositoryInterface)
		tablesRepo.Test(t)
		v1 := repository.NewPricingTablesDocument(service.DefaultPricingTables())
		v1.Version = 1
		v2 := repository.NewPricingTablesDocument(service.DefaultPricingTables())
		v2.Version = 2

		tablesRepo.On("GetActive", mock.Anything).Return(v1, nil)
		tablesRepo.On("Create", mock.Anything, mock.AnythingOfType("model.PricingTables"), "ops").Return(v2, nil).Once()

		quotesRepo := new(mocks.MockQuotesRepositoryInterface)
		quotesRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Quote"), "").Return(nil)

		db := &DatabaseComponents{PricingTablesRepo: tablesRepo, QuotesRepo: quotesRepo}
		cfg := config.Config{
			Cache:    config.CacheConfig{Size: 10, TTL: time.Minute},
			Database: config.DatabaseConfig{TablesRefresh: time.Hour},
		}

		components, err := InitializeServices(cfg, db, nil)
		require.NoError(t, err)

		first, err := components.Quotes.Quote(context.Background(), sampleQuoteRequest())
		require.NoError(t, err)

		_, err = components.PricingTables.Update(context.Background(), service.DefaultPricingTables(), "ops")
		require.NoError(t, err)

		second, err := components.Quotes.Quote(context.Background(), sampleQuoteRequest())
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 2, second.TableVersion)
	})
}

func TestInitializeServices_SharedCache(t *testing.T) {
	tests := []struct {
		name       string
		shared     bool
		wantShared bool
	}{
		{name: "quotes are shared through redis", shared: true, wantShared: true},
		{name: "sharing can be turned off", shared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })

			cfg := config.Config{Cache: config.CacheConfig{Size: 10, TTL: time.Minute, Shared: tt.shared}}
			components, err := InitializeServices(cfg, nil, rdb)
			require.NoError(t, err)
			t.Cleanup(components.Quotes.Close)

			_, err = components.Quotes.Quote(context.Background(), sampleQuoteRequest())
			require.NoError(t, err)

			keys, err := rdb.Keys(context.Background(), cache.KeyPrefix+"*").Result()
			require.NoError(t, err)
			if tt.wantShared {
				assert.Len(t, keys, 1)
			} else {
				assert.Empty(t, keys)
			}
		})
	}
}
