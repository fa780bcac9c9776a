package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardConfig(t *testing.T) PricingConfiguration {
	t.Helper()
	cfg, err := NewPricingConfiguration(TierStandard, dec("0.30"), []VolumeDiscountThreshold{
		{Quantity: 10, Rate: dec("0.05")},
		{Quantity: 100, Rate: dec("0.10")},
		{Quantity: 50, Rate: dec("0.08")},
	}, dec("4.0"), dec("0.10"))
	require.NoError(t, err)
	return cfg
}

func TestPricingConfiguration_VolumeDiscountRate(t *testing.T) {
	cfg := standardConfig(t)

	tests := []struct {
		quantity int
		want     string
	}{
		{quantity: 1, want: "0"},
		{quantity: 9, want: "0"},
		{quantity: 10, want: "0.05"},
		{quantity: 49, want: "0.05"},
		{quantity: 50, want: "0.08"},
		{quantity: 99, want: "0.08"},
		{quantity: 100, want: "0.10"},
		{quantity: 10000, want: "0.10"},
	}

	for _, tt := range tests {
		got := cfg.VolumeDiscountRate(tt.quantity)
		assert.True(t, got.Equal(dec(tt.want)), "quantity %d: got %s want %s", tt.quantity, got, tt.want)
	}
}

func TestPricingConfiguration_VolumeDiscountRateNonDecreasing(t *testing.T) {
	cfg := standardConfig(t)
	prev := cfg.VolumeDiscountRate(1)
	for q := 2; q <= 500; q++ {
		got := cfg.VolumeDiscountRate(q)
		require.True(t, got.GreaterThanOrEqual(prev), "quantity %d", q)
		prev = got
	}
}

func TestNewPricingConfiguration_Validation(t *testing.T) {
	tests := []struct {
		name      string
		tier      Tier
		margin    string
		th        []VolumeDiscountThreshold
		threshold string
		rate      string
		wantField string
	}{
		{name: "unknown tier", tier: Tier("overnight"), margin: "0.3", threshold: "4", rate: "0.1", wantField: "tier"},
		{name: "negative margin", tier: TierEconomy, margin: "-0.1", threshold: "4", rate: "0.1", wantField: "margin_percentage"},
		{name: "surcharge threshold out of range", tier: TierEconomy, margin: "0.2", threshold: "6", rate: "0.1", wantField: "complexity_surcharge_threshold"},
		{name: "negative surcharge rate", tier: TierEconomy, margin: "0.2", threshold: "4", rate: "-0.1", wantField: "complexity_surcharge_rate"},
		{
			name: "zero quantity threshold", tier: TierEconomy, margin: "0.2", threshold: "4", rate: "0.1",
			th:        []VolumeDiscountThreshold{{Quantity: 0, Rate: dec("0.1")}},
			wantField: "volume_discount_thresholds.quantity",
		},
		{
			name: "rate above one", tier: TierEconomy, margin: "0.2", threshold: "4", rate: "0.1",
			th:        []VolumeDiscountThreshold{{Quantity: 10, Rate: dec("1.5")}},
			wantField: "volume_discount_thresholds.rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPricingConfiguration(tt.tier, dec(tt.margin), tt.th, dec(tt.threshold), dec(tt.rate))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestShippingCost_ZoneMultiplier(t *testing.T) {
	s, err := NewShippingCost(dec("15"), dec("2.5"), dec("0.01"))
	require.NoError(t, err)

	assert.True(t, s.ZoneMultiplier(Zone1).Equal(dec("1.0")))
	assert.True(t, s.ZoneMultiplier(Zone2).Equal(dec("1.3")))
	assert.True(t, s.ZoneMultiplier(Zone3).Equal(dec("1.8")))
	assert.True(t, s.ZoneMultiplier(Zone4).Equal(dec("2.5")))

	s.DistanceMultipliers = nil
	assert.True(t, s.ZoneMultiplier(Zone3).Equal(dec("1.8")), "falls back to defaults")
}

func TestShippingCost_Validate(t *testing.T) {
	s := ShippingCost{
		BaseCost:            dec("10"),
		WeightFactor:        dec("1"),
		VolumeFactor:        dec("0.01"),
		DistanceMultipliers: map[ShippingZone]decimal.Decimal{5: dec("3")},
	}
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
}

func TestNewPricingRequest(t *testing.T) {
	cost := NewCostBreakdown(dec("10"), dec("10"), dec("10"), dec("0"))

	tests := []struct {
		name      string
		score     string
		weight    string
		volume    string
		quantity  int
		zone      ShippingZone
		wantField string
	}{
		{name: "valid", score: "2", weight: "0.3", volume: "125", quantity: 5, zone: Zone2},
		{name: "zero weight", score: "2", weight: "0", volume: "125", quantity: 5, zone: Zone2, wantField: "part_weight_kg"},
		{name: "zero volume", score: "2", weight: "1", volume: "0", quantity: 5, zone: Zone2, wantField: "part_volume_cm3"},
		{name: "zero quantity", score: "2", weight: "1", volume: "1", quantity: 0, zone: Zone2, wantField: "quantity"},
		{name: "zone out of range", score: "2", weight: "1", volume: "1", quantity: 1, zone: 5, wantField: "shipping_zone"},
		{name: "score out of range", score: "9", weight: "1", volume: "1", quantity: 1, zone: Zone1, wantField: "complexity_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPricingRequest(cost, dec(tt.score), dec(tt.weight), dec(tt.volume), tt.quantity, CustomerTierStandard, tt.zone)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestPriceBreakdown_Recompute(t *testing.T) {
	p := PriceBreakdown{
		Tier:                TierStandard,
		Quantity:            3,
		BaseCost:            dec("100"),
		Margin:              dec("30"),
		ShippingCost:        dec("20"),
		VolumeDiscount:      dec("10"),
		ComplexitySurcharge: dec("5"),
		FinalDiscount:       dec("45"),
	}.Recompute()

	assert.True(t, p.Subtotal.Equal(dec("145")))
	assert.True(t, p.FinalPrice.Equal(dec("100")))
	assert.True(t, p.PricePerUnit.Mul(dec("3")).Round(10).Equal(dec("100")))
	assert.True(t, p.TotalDiscount().Equal(dec("55")))
	assert.True(t, p.DiscountBase().Equal(dec("130")))
}

func TestTierPricing_Cheapest(t *testing.T) {
	price := func(tier Tier, final string) PriceBreakdown {
		return PriceBreakdown{Tier: tier, FinalPrice: dec(final)}
	}

	t.Run("lowest final price wins", func(t *testing.T) {
		tp := TierPricing{
			Expedited:       price(TierExpedited, "300"),
			Standard:        price(TierStandard, "200"),
			Economy:         price(TierEconomy, "150"),
			DomesticEconomy: price(TierDomesticEconomy, "160"),
		}
		tier, p := tp.Cheapest()
		assert.Equal(t, TierEconomy, tier)
		assert.True(t, p.FinalPrice.Equal(dec("150")))
	})

	t.Run("tie goes to the faster tier", func(t *testing.T) {
		tp := TierPricing{
			Expedited:       price(TierExpedited, "300"),
			Standard:        price(TierStandard, "150"),
			Economy:         price(TierEconomy, "150"),
			DomesticEconomy: price(TierDomesticEconomy, "150"),
		}
		tier, _ := tp.Cheapest()
		assert.Equal(t, TierStandard, tier)
	})
}

func TestTierPricing_GetWith(t *testing.T) {
	var tp TierPricing
	for _, tier := range AllTiers {
		tp = tp.With(tier, PriceBreakdown{Tier: tier})
	}
	for _, tier := range AllTiers {
		p, ok := tp.Get(tier)
		require.True(t, ok)
		assert.Equal(t, tier, p.Tier)
	}

	_, ok := tp.Get(Tier("overnight"))
	assert.False(t, ok)
}
