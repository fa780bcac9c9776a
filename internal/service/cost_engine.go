package service

import (
	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// Processing time heuristics, in hours. Each family is dominated by the
// geometric quantity that drives machine time for that process.
var (
	cncBaseHours        = decimal.RequireFromString("0.5")
	cncHoursPerCM2      = decimal.RequireFromString("0.01")
	cncHoursPerCM3      = decimal.RequireFromString("0.002")
	additiveBaseHours   = decimal.RequireFromString("0.25")
	additiveHoursPerCM3 = decimal.RequireFromString("0.05")
	additiveHoursPerCM  = decimal.RequireFromString("0.1")
	cuttingBaseHours    = decimal.RequireFromString("0.1")
	cuttingHoursPerCM2  = decimal.RequireFromString("0.002")
	defaultBaseHours    = decimal.RequireFromString("0.5")
	defaultHoursPerCM3  = decimal.RequireFromString("0.01")
	highComplexityScore = decimal.NewFromInt(4)
	midComplexityScore  = decimal.NewFromInt(3)
	highComplexityRate  = decimal.RequireFromString("0.25")
	midComplexityRate   = decimal.RequireFromString("0.10")
)

// CostEngine converts a part specification into a manufacturing cost breakdown.
type CostEngine interface {
	CalculateCost(spec model.PartSpecification, materials model.MaterialCostTable, processes model.ProcessCostTable) (model.CostBreakdown, error)
	EstimateCostRange(spec model.PartSpecification, materials model.MaterialCostTable, processes model.ProcessCostTable) (model.CostRange, error)
}

// CostEngineService implements CostEngine. It holds no state; all tables are arguments.
type CostEngineService struct{}

// NewCostEngine creates a new CostEngineService.
func NewCostEngine() *CostEngineService {
	return &CostEngineService{}
}

// CalculateCost computes material, labor, setup, complexity adjustment and overhead
// for a single part.
func (e *CostEngineService) CalculateCost(spec model.PartSpecification, materials model.MaterialCostTable, processes model.ProcessCostTable) (model.CostBreakdown, error) {
	material, ok := materials[spec.Material]
	if !ok {
		return model.CostBreakdown{}, &model.UnsupportedMaterialError{Material: spec.Material}
	}
	process, ok := processes[spec.Process]
	if !ok {
		return model.CostBreakdown{}, &model.UnsupportedProcessError{Process: spec.Process}
	}

	volume := spec.Dimensions.VolumeCM3()
	materialCost := volume.Mul(material.CostPerCM3).Mul(material.WasteFactor)

	hours := EstimateProcessingHours(spec.Process, spec.Dimensions)
	multiplier := process.ComplexityMultipliers.Lookup(spec.ComplexityScore)
	laborCost := hours.Mul(multiplier).Mul(process.HourlyRate)

	setupCost := material.SetupCost.Add(process.HourlyRate.Mul(process.SetupTimeHours))
	adjustment := laborCost.Mul(complexityAdjustmentRate(spec.ComplexityScore))

	return model.NewCostBreakdown(materialCost, laborCost, setupCost, adjustment), nil
}

// EstimateCostRange prices the part at the lowest and highest complexity scores.
func (e *CostEngineService) EstimateCostRange(spec model.PartSpecification, materials model.MaterialCostTable, processes model.ProcessCostTable) (model.CostRange, error) {
	low, err := e.CalculateCost(spec.WithComplexity(model.MinComplexityScore), materials, processes)
	if err != nil {
		return model.CostRange{}, err
	}
	high, err := e.CalculateCost(spec.WithComplexity(model.MaxComplexityScore), materials, processes)
	if err != nil {
		return model.CostRange{}, err
	}
	return model.CostRange{Minimum: low, Maximum: high}, nil
}

// EstimateProcessingHours returns the machine time for one part.
func EstimateProcessingHours(process model.ProcessType, dims model.PartDimensions) decimal.Decimal {
	switch process.Family() {
	case model.FamilyCNC:
		return cncBaseHours.
			Add(dims.SurfaceAreaCM2().Mul(cncHoursPerCM2)).
			Add(dims.VolumeCM3().Mul(cncHoursPerCM3))
	case model.FamilyAdditive:
		return additiveBaseHours.
			Add(dims.VolumeCM3().Mul(additiveHoursPerCM3)).
			Add(dims.HeightCM().Mul(additiveHoursPerCM))
	case model.FamilyCutting:
		return cuttingBaseHours.Add(dims.SurfaceAreaCM2().Mul(cuttingHoursPerCM2))
	default:
		return defaultBaseHours.Add(dims.VolumeCM3().Mul(defaultHoursPerCM3))
	}
}

func complexityAdjustmentRate(score decimal.Decimal) decimal.Decimal {
	switch {
	case score.GreaterThanOrEqual(highComplexityScore):
		return highComplexityRate
	case score.GreaterThanOrEqual(midComplexityScore):
		return midComplexityRate
	default:
		return decimal.Zero
	}
}
