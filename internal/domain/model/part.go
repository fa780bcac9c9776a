// Package model defines the core domain value objects for the quote service.
//
// All monetary amounts and ratios are shopspring decimals. Values are built
// through constructors that validate their invariants and are never mutated
// after construction.
package model

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	mmPerCm   = decimal.NewFromInt(10)
	mm2PerCm2 = decimal.NewFromInt(100)
	mm3PerCm3 = decimal.NewFromInt(1000)

	// MinComplexityScore is the lowest accepted geometric complexity score.
	MinComplexityScore = decimal.NewFromInt(1)
	// MaxComplexityScore is the highest accepted geometric complexity score.
	MaxComplexityScore = decimal.NewFromInt(5)
)

// MaterialType identifies a material in the material cost table.
type MaterialType string

// Supported materials.
const (
	MaterialAluminum       MaterialType = "aluminum"
	MaterialSteel          MaterialType = "steel"
	MaterialStainlessSteel MaterialType = "stainless_steel"
	MaterialTitanium       MaterialType = "titanium"
	MaterialBrass          MaterialType = "brass"
	MaterialPlasticABS     MaterialType = "plastic_abs"
	MaterialPlasticPLA     MaterialType = "plastic_pla"
	MaterialNylon          MaterialType = "nylon"
	MaterialPEEK           MaterialType = "peek"
)

// ProcessType identifies a manufacturing process in the process cost table.
type ProcessType string

// Supported processes.
const (
	ProcessCNCMachining     ProcessType = "cnc_machining"
	ProcessCNCTurning       ProcessType = "cnc_turning"
	Process3DPrintingFDM    ProcessType = "3d_printing_fdm"
	Process3DPrintingSLA    ProcessType = "3d_printing_sla"
	Process3DPrintingSLS    ProcessType = "3d_printing_sls"
	ProcessSheetMetal       ProcessType = "sheet_metal"
	ProcessLaserCutting     ProcessType = "laser_cutting"
	ProcessInjectionMolding ProcessType = "injection_molding"
)

// ProcessFamily groups processes that share a processing-time heuristic.
type ProcessFamily int

// Process families.
const (
	FamilyOther ProcessFamily = iota
	FamilyCNC
	FamilyAdditive
	FamilyCutting
)

// Family returns the heuristic family of the process.
func (p ProcessType) Family() ProcessFamily {
	switch p {
	case ProcessCNCMachining, ProcessCNCTurning:
		return FamilyCNC
	case Process3DPrintingFDM, Process3DPrintingSLA, Process3DPrintingSLS:
		return FamilyAdditive
	case ProcessSheetMetal, ProcessLaserCutting:
		return FamilyCutting
	default:
		return FamilyOther
	}
}

// PartDimensions holds the bounding box of a part in millimetres.
type PartDimensions struct {
	LengthMM decimal.Decimal `json:"length_mm"`
	WidthMM  decimal.Decimal `json:"width_mm"`
	HeightMM decimal.Decimal `json:"height_mm"`
}

// NewPartDimensions validates that every dimension is strictly positive.
func NewPartDimensions(length, width, height decimal.Decimal) (PartDimensions, error) {
	if !length.IsPositive() {
		return PartDimensions{}, NewValidationError("length_mm", "must be greater than 0")
	}
	if !width.IsPositive() {
		return PartDimensions{}, NewValidationError("width_mm", "must be greater than 0")
	}
	if !height.IsPositive() {
		return PartDimensions{}, NewValidationError("height_mm", "must be greater than 0")
	}
	return PartDimensions{LengthMM: length, WidthMM: width, HeightMM: height}, nil
}

// VolumeCM3 returns the bounding-box volume in cubic centimetres.
func (d PartDimensions) VolumeCM3() decimal.Decimal {
	return d.LengthMM.Mul(d.WidthMM).Mul(d.HeightMM).Div(mm3PerCm3)
}

// SurfaceAreaCM2 returns the bounding-box surface area in square centimetres.
func (d PartDimensions) SurfaceAreaCM2() decimal.Decimal {
	lw := d.LengthMM.Mul(d.WidthMM)
	lh := d.LengthMM.Mul(d.HeightMM)
	wh := d.WidthMM.Mul(d.HeightMM)
	return lw.Add(lh).Add(wh).Mul(decimal.NewFromInt(2)).Div(mm2PerCm2)
}

// HeightCM returns the part height in centimetres.
func (d PartDimensions) HeightCM() decimal.Decimal {
	return d.HeightMM.Div(mmPerCm)
}

// BoundingBoxDiagonalMM returns the space diagonal of the bounding box.
// It is informational only and never feeds a price.
func (d PartDimensions) BoundingBoxDiagonalMM() decimal.Decimal {
	sum := d.LengthMM.Mul(d.LengthMM).Add(d.WidthMM.Mul(d.WidthMM)).Add(d.HeightMM.Mul(d.HeightMM))
	f, _ := sum.Float64()
	return decimal.NewFromFloat(math.Sqrt(f)).Round(4)
}

// PartSpecification describes the part to be manufactured.
type PartSpecification struct {
	Dimensions      PartDimensions  `json:"dimensions"`
	ComplexityScore decimal.Decimal `json:"complexity_score"`
	Material        MaterialType    `json:"material"`
	Process         ProcessType     `json:"process"`
}

// NewPartSpecification validates the complexity score range and non-empty keys.
// Whether the material and process exist is decided against the cost tables
// at calculation time.
func NewPartSpecification(dims PartDimensions, complexity decimal.Decimal, material MaterialType, process ProcessType) (PartSpecification, error) {
	if err := ValidateComplexityScore("complexity_score", complexity); err != nil {
		return PartSpecification{}, err
	}
	if material == "" {
		return PartSpecification{}, NewValidationError("material", "is required")
	}
	if process == "" {
		return PartSpecification{}, NewValidationError("process", "is required")
	}
	return PartSpecification{
		Dimensions:      dims,
		ComplexityScore: complexity,
		Material:        material,
		Process:         process,
	}, nil
}

// WithComplexity returns a copy of the specification with another complexity score.
func (s PartSpecification) WithComplexity(score decimal.Decimal) PartSpecification {
	s.ComplexityScore = score
	return s
}

// ValidateComplexityScore checks that a score lies in [1.0, 5.0].
func ValidateComplexityScore(field string, score decimal.Decimal) error {
	if score.LessThan(MinComplexityScore) || score.GreaterThan(MaxComplexityScore) {
		return NewValidationError(field, "must be between 1.0 and 5.0")
	}
	return nil
}
