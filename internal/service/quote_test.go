//go:build !integration

package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/mocks"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service/cache"
)

type staticTables struct {
	tables model.PricingTables
	err    error
}

func (s staticTables) Active(context.Context) (model.PricingTables, error) { return s.tables, s.err }
func (s staticTables) Update(context.Context, model.PricingTables, string) (model.PricingTables, error) {
	return s.tables, s.err
}
func (s staticTables) History(context.Context, int) ([]repository.PricingTablesDocument, error) {
	return nil, s.err
}
func (s staticTables) Seed(context.Context) error { return s.err }

func quoteRequest(t *testing.T) QuoteRequest {
	t.Helper()
	return QuoteRequest{
		Part:         bracket(t, model.MaterialAluminum, model.ProcessCNCMachining, "3.2"),
		Quantity:     10,
		ShippingZone: model.Zone1,
		ClientID:     "client-1",
	}
}

func TestQuoteService_Quote(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("prices every tier and persists the quote", func(t *testing.T) {
		repo := new(mocks.MockQuotesRepositoryInterface)
		repo.On("Create", mock.Anything, mock.AnythingOfType("model.Quote"), "client-1").Return(nil).Once()
		svc := NewQuoteService(WithQuoteRepository(repo), WithClock(func() time.Time { return fixed }))

		quote, err := svc.Quote(ctx, quoteRequest(t))
		require.NoError(t, err)

		assert.NotEmpty(t, quote.ID)
		assert.Equal(t, fixed, quote.CreatedAt)
		assert.Equal(t, model.CustomerTierStandard, quote.CustomerTier)
		assertDecimal(t, "627.0375", quote.CostBreakdown.TotalCost)
		assertDecimal(t, "125", quote.PartVolumeCM3)
		// 125 cm3 of aluminium at 2.70 g/cm3
		assertDecimal(t, "0.3375", quote.PartWeightKG)
		for _, tier := range model.AllTiers {
			p, _ := quote.Pricing.Get(tier)
			assert.Equal(t, tier, p.Tier)
			assert.True(t, p.FinalPrice.IsPositive())
		}
		assert.Len(t, quote.Limits, len(model.AllTiers))
		assert.False(t, quote.WasAdjusted())
		repo.AssertExpectations(t)
	})

	t.Run("explicit weight is used", func(t *testing.T) {
		svc := NewQuoteService()
		req := quoteRequest(t)
		req.PartWeightKG = decimal.NewFromInt(2)

		quote, err := svc.Quote(ctx, req)
		require.NoError(t, err)
		assertDecimal(t, "2", quote.PartWeightKG)
	})

	t.Run("cache reuses pricing but issues a quote per caller", func(t *testing.T) {
		repo := new(mocks.MockQuotesRepositoryInterface)
		repo.On("Create", mock.Anything, mock.AnythingOfType("model.Quote"), "client-a").Return(nil).Once()
		repo.On("Create", mock.Anything, mock.AnythingOfType("model.Quote"), "client-b").Return(nil).Once()
		tiers := &countingTiers{TierPriceCalculator: NewTierPriceCalculator()}
		svc := NewQuoteService(WithQuoteRepository(repo), WithCore(nil, tiers, nil), WithCache(100, time.Minute))

		reqA := quoteRequest(t)
		reqA.ClientID = "client-a"
		reqB := quoteRequest(t)
		reqB.ClientID = "client-b"

		first, err := svc.Quote(ctx, reqA)
		require.NoError(t, err)
		second, err := svc.Quote(ctx, reqB)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.EqualValues(t, 1, tiers.calls.Load())
		assert.Equal(t, first.Pricing, second.Pricing)
		repo.AssertExpectations(t)
		repo.AssertNumberOfCalls(t, "Create", 2)

		svc.InvalidateCache()
		repo.On("Create", mock.Anything, mock.Anything, "client-a").Return(nil).Once()
		third, err := svc.Quote(ctx, reqA)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, third.ID)
		assert.EqualValues(t, 2, tiers.calls.Load())
	})

	t.Run("shared cache serves other replicas", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		tiersA := &countingTiers{TierPriceCalculator: NewTierPriceCalculator()}
		tiersB := &countingTiers{TierPriceCalculator: NewTierPriceCalculator()}
		replicaA := NewQuoteService(WithCore(nil, tiersA, nil), WithCache(100, time.Minute), WithSharedCache(cache.NewRedis(client, time.Minute)))
		replicaB := NewQuoteService(WithCore(nil, tiersB, nil), WithCache(100, time.Minute), WithSharedCache(cache.NewRedis(client, time.Minute)))
		t.Cleanup(replicaA.Close)
		t.Cleanup(replicaB.Close)

		first, err := replicaA.Quote(ctx, quoteRequest(t))
		require.NoError(t, err)
		second, err := replicaB.Quote(ctx, quoteRequest(t))
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.EqualValues(t, 1, tiersA.calls.Load())
		assert.Zero(t, tiersB.calls.Load())
		assertDecimal(t, first.Pricing.Standard.BaseCost.String(), second.Pricing.Standard.BaseCost)
	})

	t.Run("different limits miss the cache", func(t *testing.T) {
		tiers := &countingTiers{TierPriceCalculator: NewTierPriceCalculator()}
		svc := NewQuoteService(WithCore(nil, tiers, nil), WithCache(100, time.Minute))

		first, err := svc.Quote(ctx, quoteRequest(t))
		require.NoError(t, err)

		req := quoteRequest(t)
		req.Limits = limitsOf(t, model.WithMinimumTotalPrice(decimal.NewFromInt(1)))
		second, err := svc.Quote(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.EqualValues(t, 2, tiers.calls.Load())
	})

	t.Run("corrective limits adjust tiers", func(t *testing.T) {
		svc := NewQuoteService(WithLimits(limitsOf(t, model.WithMinimumPriceMultiplier(decimal.NewFromInt(3)))))

		quote, err := svc.Quote(ctx, quoteRequest(t))
		require.NoError(t, err)

		assert.True(t, quote.WasAdjusted())
		assert.Equal(t, len(model.AllTiers), quote.ViolationCount())
		floor := quote.Pricing.Standard.BaseCost.Mul(decimal.NewFromInt(3))
		assert.True(t, quote.Pricing.Standard.FinalPrice.GreaterThanOrEqual(floor))
	})

	t.Run("strict mode rejects and stores nothing", func(t *testing.T) {
		repo := new(mocks.MockQuotesRepositoryInterface)
		svc := NewQuoteService(WithQuoteRepository(repo), WithStrict(true))
		req := quoteRequest(t)
		req.Limits = limitsOf(t, model.WithMinimumPriceMultiplier(decimal.NewFromInt(3)))

		_, err := svc.Quote(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrPriceLimit)

		var limitErr model.LimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, model.TierExpedited, limitErr.TierName())
		assert.Equal(t, model.ViolationCostBasis, limitErr.ViolationType())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("request can opt out of strict mode", func(t *testing.T) {
		strict := false
		svc := NewQuoteService(WithStrict(true), WithLimits(limitsOf(t, model.WithMinimumPriceMultiplier(decimal.NewFromInt(3)))))
		req := quoteRequest(t)
		req.Strict = &strict

		quote, err := svc.Quote(ctx, req)
		require.NoError(t, err)
		assert.False(t, quote.Strict)
		assert.True(t, quote.WasAdjusted())
	})

	t.Run("persistence failure is not fatal", func(t *testing.T) {
		repo := new(mocks.MockQuotesRepositoryInterface)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("write failed"))
		svc := NewQuoteService(WithQuoteRepository(repo))

		quote, err := svc.Quote(ctx, quoteRequest(t))
		require.NoError(t, err)
		assert.NotEmpty(t, quote.ID)
	})

	t.Run("tables error is returned", func(t *testing.T) {
		boom := errors.New("tables unavailable")
		svc := NewQuoteService(WithTables(staticTables{err: boom}))

		_, err := svc.Quote(ctx, quoteRequest(t))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown density requires a weight", func(t *testing.T) {
		tables := DefaultPricingTables()
		aluminum := tables.Materials[model.MaterialAluminum]
		aluminum.Density = decimal.Zero
		tables.Materials[model.MaterialAluminum] = aluminum
		svc := NewQuoteService(WithTables(staticTables{tables: tables}))

		_, err := svc.Quote(ctx, quoteRequest(t))
		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "part_weight_kg", validationErr.Field)

		req := quoteRequest(t)
		req.PartWeightKG = decimal.NewFromInt(1)
		_, err = svc.Quote(ctx, req)
		assert.NoError(t, err)
	})
}

func TestQuoteService_Quote_InvalidRequests(t *testing.T) {
	ctx := context.Background()
	svc := NewQuoteService()

	tests := []struct {
		name     string
		mutate   func(*QuoteRequest)
		sentinel error
	}{
		{"zero quantity", func(r *QuoteRequest) { r.Quantity = 0 }, model.ErrInvalidInput},
		{"zone out of range", func(r *QuoteRequest) { r.ShippingZone = 5 }, model.ErrInvalidInput},
		{"unknown customer tier", func(r *QuoteRequest) { r.CustomerTier = "gold" }, model.ErrInvalidInput},
		{"negative weight", func(r *QuoteRequest) { r.PartWeightKG = decimal.NewFromInt(-1) }, model.ErrInvalidInput},
		{"complexity out of range", func(r *QuoteRequest) { r.Part.ComplexityScore = decimal.NewFromInt(7) }, model.ErrInvalidInput},
		{"zero dimension", func(r *QuoteRequest) { r.Part.Dimensions.WidthMM = decimal.Zero }, model.ErrInvalidInput},
		{"negative limit", func(r *QuoteRequest) {
			v := decimal.NewFromInt(-1)
			r.Limits = &model.PricingLimits{MinimumTotalPrice: &v}
		}, model.ErrInvalidInput},
		{"unsupported material", func(r *QuoteRequest) { r.Part.Material = "unobtainium" }, model.ErrUnsupportedMaterial},
		{"unsupported process", func(r *QuoteRequest) { r.Part.Process = "forging" }, model.ErrUnsupportedProcess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := quoteRequest(t)
			tt.mutate(&req)

			_, err := svc.Quote(ctx, req)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestQuoteService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("repository not configured", func(t *testing.T) {
		_, err := NewQuoteService().Get(ctx, "q-1")
		assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
	})

	t.Run("found", func(t *testing.T) {
		repo := new(mocks.MockQuotesRepositoryInterface)
		repo.On("GetByID", mock.Anything, "q-1").Return(&model.Quote{ID: "q-1", Quantity: 4}, nil)

		quote, err := NewQuoteService(WithQuoteRepository(repo)).Get(ctx, "q-1")
		require.NoError(t, err)
		assert.Equal(t, 4, quote.Quantity)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mocks.MockQuotesRepositoryInterface)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrQuoteNotFound)

		_, err := NewQuoteService(WithQuoteRepository(repo)).Get(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrQuoteNotFound)
	})
}

func TestQuoteService_Cost(t *testing.T) {
	ctx := context.Background()
	tables := DefaultPricingTables()
	tables.Version = 7
	svc := NewQuoteService(WithTables(staticTables{tables: tables}))

	estimate, err := svc.Cost(ctx, bracket(t, model.MaterialAluminum, model.ProcessCNCMachining, "3.2"))
	require.NoError(t, err)
	assert.Equal(t, 7, estimate.TableVersion)
	assertDecimal(t, "627.0375", estimate.Breakdown.TotalCost)
	assert.True(t, estimate.Range.Minimum.TotalCost.LessThan(estimate.Range.Maximum.TotalCost))

	_, err = svc.Cost(ctx, bracket(t, model.MaterialAluminum, "forging", "2"))
	assert.ErrorIs(t, err, model.ErrUnsupportedProcess)
}

func TestQuoteService_LimitsFallback(t *testing.T) {
	defaults := limitsOf(t, model.WithMinimumTotalPrice(decimal.NewFromInt(50)))
	svc := NewQuoteService(WithLimits(defaults))
	p := breakdown(priceFields{base: "20", margin: "5"})
	req := model.PricingRequest{Quantity: 1}

	res := svc.ApplyLimits(p, req, nil)
	assertDecimal(t, "50", res.Breakdown.FinalPrice)

	res = svc.ApplyLimits(p, req, limitsOf(t, model.WithMinimumTotalPrice(decimal.NewFromInt(30))))
	assertDecimal(t, "30", res.Breakdown.FinalPrice)

	err := svc.ValidateLimits(p, req, nil)
	var belowErr *model.BelowMinimumPriceError
	require.ErrorAs(t, err, &belowErr)
	assert.Equal(t, model.VariantTotal, belowErr.Variant)
}

func TestFingerprint(t *testing.T) {
	req := quoteRequest(t)
	base := fingerprint(req, nil, false, 1)

	assert.Equal(t, base, fingerprint(req, &model.PricingLimits{}, false, 1))
	assert.NotEqual(t, base, fingerprint(req, nil, true, 1))
	assert.NotEqual(t, base, fingerprint(req, nil, false, 2))

	other := req
	other.Quantity = 11
	assert.NotEqual(t, base, fingerprint(other, nil, false, 1))

	v := decimal.NewFromInt(5)
	assert.NotEqual(t, base, fingerprint(req, &model.PricingLimits{MinimumTotalPrice: &v}, false, 1))
}

type countingTiers struct {
	TierPriceCalculator
	calls atomic.Int32
}

func (c *countingTiers) CalculateTierPricing(ctx context.Context, req model.PricingRequest, configs map[model.Tier]model.PricingConfiguration, shippings map[model.Tier]model.ShippingCost) (model.TierPricing, error) {
	c.calls.Add(1)
	return c.TierPriceCalculator.CalculateTierPricing(ctx, req, configs, shippings)
}
