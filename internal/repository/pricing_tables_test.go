//go:build !integration

package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-service/internal/domain/model"
)

func TestPricingTablesDocument_ZoneKeys(t *testing.T) {
	tables := model.PricingTables{
		Version: 3,
		Shipping: map[model.Tier]model.ShippingCost{
			model.TierStandard: {
				BaseCost:     decimal.NewFromInt(20),
				WeightFactor: decimal.NewFromInt(4),
				VolumeFactor: decimal.RequireFromString("0.01"),
				DistanceMultipliers: map[model.ShippingZone]decimal.Decimal{
					model.Zone1: decimal.NewFromInt(1),
					model.Zone4: decimal.RequireFromString("2.5"),
				},
			},
		},
	}

	doc := NewPricingTablesDocument(tables)
	require.Contains(t, doc.Shipping, model.TierStandard)
	assert.Contains(t, doc.Shipping[model.TierStandard].DistanceMultipliers, "1")
	assert.Contains(t, doc.Shipping[model.TierStandard].DistanceMultipliers, "4")

	back := doc.ToModel()
	assert.Equal(t, 3, back.Version)
	ship := back.Shipping[model.TierStandard]
	assert.True(t, ship.ZoneMultiplier(model.Zone4).Equal(decimal.RequireFromString("2.5")))
	assert.True(t, ship.BaseCost.Equal(decimal.NewFromInt(20)))
}

func TestPricingTablesDocument_SkipsMalformedZone(t *testing.T) {
	doc := &PricingTablesDocument{
		Shipping: map[model.Tier]ShippingCostDocument{
			model.TierEconomy: {
				DistanceMultipliers: map[string]decimal.Decimal{
					"2":   decimal.RequireFromString("1.3"),
					"far": decimal.NewFromInt(9),
				},
			},
		},
	}

	zones := doc.ToModel().Shipping[model.TierEconomy].DistanceMultipliers
	assert.Len(t, zones, 1)
	assert.True(t, zones[model.Zone2].Equal(decimal.RequireFromString("1.3")))
}
