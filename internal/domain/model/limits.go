package model

import (
	"github.com/shopspring/decimal"
)

// PricingLimits are the optional business-safety thresholds enforced before
// a price is quoted. A nil field disables its check.
type PricingLimits struct {
	MinimumPricePerUnit       *decimal.Decimal `json:"minimum_price_per_unit,omitempty"`
	MinimumTotalPrice         *decimal.Decimal `json:"minimum_total_price,omitempty"`
	MinimumMarginPercentage   *decimal.Decimal `json:"minimum_margin_percentage,omitempty"`
	MinimumMarginAmount       *decimal.Decimal `json:"minimum_margin_amount,omitempty"`
	MaximumDiscountPercentage *decimal.Decimal `json:"maximum_discount_percentage,omitempty"`
	MinimumPriceMultiplier    *decimal.Decimal `json:"minimum_price_multiplier,omitempty"`
}

// LimitOption sets one field of PricingLimits.
type LimitOption func(*PricingLimits)

// WithMinimumPricePerUnit sets the per-unit price floor.
func WithMinimumPricePerUnit(v decimal.Decimal) LimitOption {
	return func(l *PricingLimits) { l.MinimumPricePerUnit = &v }
}

// WithMinimumTotalPrice sets the order total floor.
func WithMinimumTotalPrice(v decimal.Decimal) LimitOption {
	return func(l *PricingLimits) { l.MinimumTotalPrice = &v }
}

// WithMinimumMarginPercentage sets the margin floor as a fraction of base cost.
func WithMinimumMarginPercentage(v decimal.Decimal) LimitOption {
	return func(l *PricingLimits) { l.MinimumMarginPercentage = &v }
}

// WithMinimumMarginAmount sets the absolute margin floor.
func WithMinimumMarginAmount(v decimal.Decimal) LimitOption {
	return func(l *PricingLimits) { l.MinimumMarginAmount = &v }
}

// WithMaximumDiscountPercentage caps total discounts as a fraction of base cost plus margin.
func WithMaximumDiscountPercentage(v decimal.Decimal) LimitOption {
	return func(l *PricingLimits) { l.MaximumDiscountPercentage = &v }
}

// WithMinimumPriceMultiplier sets the cost-basis floor as a multiple of base cost.
func WithMinimumPriceMultiplier(v decimal.Decimal) LimitOption {
	return func(l *PricingLimits) { l.MinimumPriceMultiplier = &v }
}

// NewPricingLimits builds and validates a set of limits.
func NewPricingLimits(opts ...LimitOption) (*PricingLimits, error) {
	l := &PricingLimits{}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate rejects negative thresholds and discount caps above 100%.
func (l *PricingLimits) Validate() error {
	if l == nil {
		return nil
	}
	checks := []struct {
		field string
		value *decimal.Decimal
	}{
		{"minimum_price_per_unit", l.MinimumPricePerUnit},
		{"minimum_total_price", l.MinimumTotalPrice},
		{"minimum_margin_percentage", l.MinimumMarginPercentage},
		{"minimum_margin_amount", l.MinimumMarginAmount},
		{"maximum_discount_percentage", l.MaximumDiscountPercentage},
		{"minimum_price_multiplier", l.MinimumPriceMultiplier},
	}
	for _, c := range checks {
		if c.value != nil && c.value.IsNegative() {
			return NewValidationError(c.field, "must be >= 0")
		}
	}
	if l.MaximumDiscountPercentage != nil && l.MaximumDiscountPercentage.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("maximum_discount_percentage", "must be <= 1")
	}
	return nil
}

// IsEmpty reports whether no limit is configured.
func (l *PricingLimits) IsEmpty() bool {
	return l == nil ||
		(l.MinimumPricePerUnit == nil &&
			l.MinimumTotalPrice == nil &&
			l.MinimumMarginPercentage == nil &&
			l.MinimumMarginAmount == nil &&
			l.MaximumDiscountPercentage == nil &&
			l.MinimumPriceMultiplier == nil)
}

// ViolationType names the limit a correction was made for.
type ViolationType string

// Violation kinds, in pipeline order.
const (
	ViolationNegativePrice       ViolationType = "NEGATIVE_PRICE"
	ViolationMinimumPricePerUnit ViolationType = "MINIMUM_PRICE_PER_UNIT"
	ViolationMinimumTotalPrice   ViolationType = "MINIMUM_TOTAL_PRICE"
	ViolationMinimumMargin       ViolationType = "MINIMUM_MARGIN"
	ViolationMinimumMarginAmount ViolationType = "MINIMUM_MARGIN_AMOUNT"
	ViolationMaximumDiscount     ViolationType = "MAXIMUM_DISCOUNT"
	ViolationCostBasis           ViolationType = "COST_BASIS_PROTECTION"
)

// LimitViolation records one limit breach and the correction applied.
type LimitViolation struct {
	Type          ViolationType   `json:"type"`
	Message       string          `json:"message"`
	OriginalValue decimal.Decimal `json:"original_value"`
	AdjustedValue decimal.Decimal `json:"adjusted_value"`
	LimitValue    decimal.Decimal `json:"limit_value"`
}

// LimitResult is the outcome of corrective limit enforcement on one tier.
type LimitResult struct {
	Breakdown   PriceBreakdown   `json:"breakdown"`
	Violations  []LimitViolation `json:"violations"`
	WasAdjusted bool             `json:"was_adjusted"`
}
