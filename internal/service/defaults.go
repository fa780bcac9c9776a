package service

import (
	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func multipliers(pairs ...string) model.ComplexityMultipliers {
	out := make(model.ComplexityMultipliers, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.ComplexityMultiplier{Score: d(pairs[i]), Multiplier: d(pairs[i+1])})
	}
	return out
}

// DefaultMaterialCosts returns the built-in material cost table.
func DefaultMaterialCosts() model.MaterialCostTable {
	return model.MaterialCostTable{
		model.MaterialAluminum:       {CostPerCM3: d("0.12"), WasteFactor: d("1.25"), SetupCost: d("25"), Density: d("2.70")},
		model.MaterialSteel:          {CostPerCM3: d("0.08"), WasteFactor: d("1.30"), SetupCost: d("30"), Density: d("7.85")},
		model.MaterialStainlessSteel: {CostPerCM3: d("0.15"), WasteFactor: d("1.30"), SetupCost: d("35"), Density: d("8.00")},
		model.MaterialTitanium:       {CostPerCM3: d("0.85"), WasteFactor: d("1.40"), SetupCost: d("75"), Density: d("4.51")},
		model.MaterialBrass:          {CostPerCM3: d("0.25"), WasteFactor: d("1.25"), SetupCost: d("30"), Density: d("8.50")},
		model.MaterialPlasticABS:     {CostPerCM3: d("0.04"), WasteFactor: d("1.10"), SetupCost: d("10"), Density: d("1.05")},
		model.MaterialPlasticPLA:     {CostPerCM3: d("0.03"), WasteFactor: d("1.10"), SetupCost: d("8"), Density: d("1.24")},
		model.MaterialNylon:          {CostPerCM3: d("0.06"), WasteFactor: d("1.15"), SetupCost: d("12"), Density: d("1.14")},
		model.MaterialPEEK:           {CostPerCM3: d("0.95"), WasteFactor: d("1.20"), SetupCost: d("60"), Density: d("1.30")},
	}
}

// DefaultProcessCosts returns the built-in process cost table.
func DefaultProcessCosts() model.ProcessCostTable {
	process := func(rate, setupHours string, points ...string) model.ProcessCost {
		return model.ProcessCost{
			HourlyRate:            d(rate),
			SetupTimeHours:        d(setupHours),
			ComplexityMultipliers: multipliers(points...),
		}
	}
	return model.ProcessCostTable{
		model.ProcessCNCMachining:     process("85", "1.5", "1", "1.0", "2", "1.2", "3", "1.5", "4", "2.0", "5", "2.8"),
		model.ProcessCNCTurning:       process("70", "1.0", "1", "1.0", "3", "1.4", "5", "2.2"),
		model.Process3DPrintingFDM:    process("25", "0.25", "1", "1.0", "3", "1.2", "5", "1.5"),
		model.Process3DPrintingSLA:    process("40", "0.5", "1", "1.0", "3", "1.25", "5", "1.6"),
		model.Process3DPrintingSLS:    process("55", "0.75", "1", "1.0", "3", "1.3", "5", "1.7"),
		model.ProcessSheetMetal:       process("60", "1.0", "1", "1.0", "3", "1.3", "5", "1.8"),
		model.ProcessLaserCutting:     process("90", "0.5", "1", "1.0", "3", "1.2", "5", "1.5"),
		model.ProcessInjectionMolding: process("120", "8", "1", "1.0", "3", "1.5", "5", "2.5"),
	}
}

// DefaultTierConfigurations returns the built-in margin and discount rules per tier.
func DefaultTierConfigurations() map[model.Tier]model.PricingConfiguration {
	config := func(tier model.Tier, margin, r10, r50, r100, surchargeAt, surchargeRate string) model.PricingConfiguration {
		return model.PricingConfiguration{
			Tier:             tier,
			MarginPercentage: d(margin),
			VolumeDiscountThresholds: []model.VolumeDiscountThreshold{
				{Quantity: 10, Rate: d(r10)},
				{Quantity: 50, Rate: d(r50)},
				{Quantity: 100, Rate: d(r100)},
			},
			ComplexitySurchargeThreshold: d(surchargeAt),
			ComplexitySurchargeRate:      d(surchargeRate),
		}
	}
	return map[model.Tier]model.PricingConfiguration{
		model.TierExpedited:       config(model.TierExpedited, "0.45", "0.03", "0.05", "0.08", "3.5", "0.15"),
		model.TierStandard:        config(model.TierStandard, "0.35", "0.05", "0.08", "0.12", "4.0", "0.10"),
		model.TierEconomy:         config(model.TierEconomy, "0.25", "0.07", "0.10", "0.15", "4.0", "0.08"),
		model.TierDomesticEconomy: config(model.TierDomesticEconomy, "0.20", "0.08", "0.12", "0.18", "4.5", "0.05"),
	}
}

// DefaultShippingCosts returns the built-in shipping formula per tier.
func DefaultShippingCosts() map[model.Tier]model.ShippingCost {
	ship := func(base, weight, volume string) model.ShippingCost {
		return model.ShippingCost{
			BaseCost:            d(base),
			WeightFactor:        d(weight),
			VolumeFactor:        d(volume),
			DistanceMultipliers: model.DefaultDistanceMultipliers(),
		}
	}
	return map[model.Tier]model.ShippingCost{
		model.TierExpedited:       ship("45", "8.0", "0.02"),
		model.TierStandard:        ship("20", "4.0", "0.01"),
		model.TierEconomy:         ship("12", "2.5", "0.006"),
		model.TierDomesticEconomy: ship("8", "1.5", "0.004"),
	}
}

// DefaultPricingTables bundles every built-in table as version 0.
func DefaultPricingTables() model.PricingTables {
	return model.PricingTables{
		Materials: DefaultMaterialCosts(),
		Processes: DefaultProcessCosts(),
		Tiers:     DefaultTierConfigurations(),
		Shipping:  DefaultShippingCosts(),
	}
}
