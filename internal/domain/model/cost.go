package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// OverheadRate is the share of the pre-overhead cost added as overhead.
var OverheadRate = decimal.RequireFromString("0.15")

// MaterialCost is one row of the material cost table.
type MaterialCost struct {
	CostPerCM3  decimal.Decimal `json:"cost_per_cm3"`
	WasteFactor decimal.Decimal `json:"waste_factor"`
	SetupCost   decimal.Decimal `json:"setup_cost"`
	// Density in g/cm³, zero when unknown.
	Density decimal.Decimal `json:"density,omitempty"`
}

// NewMaterialCost validates a material cost row.
func NewMaterialCost(costPerCM3, wasteFactor, setupCost, density decimal.Decimal) (MaterialCost, error) {
	m := MaterialCost{CostPerCM3: costPerCM3, WasteFactor: wasteFactor, SetupCost: setupCost, Density: density}
	return m, m.Validate()
}

// Validate checks the material cost invariants.
func (m MaterialCost) Validate() error {
	if m.CostPerCM3.IsNegative() {
		return NewValidationError("cost_per_cm3", "must be >= 0")
	}
	if m.WasteFactor.LessThan(decimal.NewFromInt(1)) {
		return NewValidationError("waste_factor", "must be >= 1.0")
	}
	if m.SetupCost.IsNegative() {
		return NewValidationError("setup_cost", "must be >= 0")
	}
	if m.Density.IsNegative() {
		return NewValidationError("density", "must be >= 0")
	}
	return nil
}

// ComplexityMultiplier maps a complexity score to a processing time multiplier.
type ComplexityMultiplier struct {
	Score      decimal.Decimal `json:"score"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// ComplexityMultipliers is a sparse score to multiplier table.
type ComplexityMultipliers []ComplexityMultiplier

// Sorted returns a copy ordered by ascending score.
func (t ComplexityMultipliers) Sorted() ComplexityMultipliers {
	out := make(ComplexityMultipliers, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.LessThan(out[j].Score)
	})
	return out
}

// Lookup returns the multiplier for score: the exact entry when present,
// linear interpolation between the bracketing entries otherwise, and the
// boundary entry outside the table's range. An empty table yields 1.
func (t ComplexityMultipliers) Lookup(score decimal.Decimal) decimal.Decimal {
	if len(t) == 0 {
		return decimal.NewFromInt(1)
	}
	points := t.Sorted()

	first, last := points[0], points[len(points)-1]
	if score.LessThanOrEqual(first.Score) {
		return first.Multiplier
	}
	if score.GreaterThanOrEqual(last.Score) {
		return last.Multiplier
	}

	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if score.Equal(hi.Score) {
			return hi.Multiplier
		}
		if score.LessThan(hi.Score) {
			span := hi.Score.Sub(lo.Score)
			if span.IsZero() {
				return hi.Multiplier
			}
			ratio := score.Sub(lo.Score).Div(span)
			return lo.Multiplier.Add(hi.Multiplier.Sub(lo.Multiplier).Mul(ratio))
		}
	}
	return last.Multiplier
}

// ProcessCost is one row of the process cost table.
type ProcessCost struct {
	HourlyRate            decimal.Decimal       `json:"hourly_rate"`
	SetupTimeHours        decimal.Decimal       `json:"setup_time_hours"`
	ComplexityMultipliers ComplexityMultipliers `json:"complexity_multipliers"`
}

// NewProcessCost validates a process cost row.
func NewProcessCost(hourlyRate, setupTimeHours decimal.Decimal, multipliers ComplexityMultipliers) (ProcessCost, error) {
	p := ProcessCost{HourlyRate: hourlyRate, SetupTimeHours: setupTimeHours, ComplexityMultipliers: multipliers.Sorted()}
	return p, p.Validate()
}

// Validate checks the process cost invariants.
func (p ProcessCost) Validate() error {
	if p.HourlyRate.IsNegative() {
		return NewValidationError("hourly_rate", "must be >= 0")
	}
	if p.SetupTimeHours.IsNegative() {
		return NewValidationError("setup_time_hours", "must be >= 0")
	}
	for _, m := range p.ComplexityMultipliers {
		if err := ValidateComplexityScore("complexity_multipliers.score", m.Score); err != nil {
			return err
		}
		if m.Multiplier.IsNegative() {
			return NewValidationError("complexity_multipliers.multiplier", "must be >= 0")
		}
	}
	return nil
}

// MaterialCostTable is the material cost lookup supplied to the cost engine.
type MaterialCostTable map[MaterialType]MaterialCost

// ProcessCostTable is the process cost lookup supplied to the cost engine.
type ProcessCostTable map[ProcessType]ProcessCost

// CostBreakdown is the manufacturing cost of a single part.
// TotalCost always equals the pre-overhead sum times 1.15.
type CostBreakdown struct {
	MaterialCost         decimal.Decimal `json:"material_cost"`
	LaborCost            decimal.Decimal `json:"labor_cost"`
	SetupCost            decimal.Decimal `json:"setup_cost"`
	ComplexityAdjustment decimal.Decimal `json:"complexity_adjustment"`
	OverheadCost         decimal.Decimal `json:"overhead_cost"`
	TotalCost            decimal.Decimal `json:"total_cost"`
}

// NewCostBreakdown derives overhead and total from the four direct cost components.
func NewCostBreakdown(material, labor, setup, complexityAdjustment decimal.Decimal) CostBreakdown {
	direct := material.Add(labor).Add(setup).Add(complexityAdjustment)
	overhead := direct.Mul(OverheadRate)
	return CostBreakdown{
		MaterialCost:         material,
		LaborCost:            labor,
		SetupCost:            setup,
		ComplexityAdjustment: complexityAdjustment,
		OverheadCost:         overhead,
		TotalCost:            direct.Add(overhead),
	}
}

// DirectCost returns material + labor + setup + complexity adjustment.
func (c CostBreakdown) DirectCost() decimal.Decimal {
	return c.MaterialCost.Add(c.LaborCost).Add(c.SetupCost).Add(c.ComplexityAdjustment)
}

// CostRange bounds the cost of a part across the whole complexity scale.
type CostRange struct {
	Minimum CostBreakdown `json:"minimum"`
	Maximum CostBreakdown `json:"maximum"`
}
