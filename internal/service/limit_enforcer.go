package service

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// MinimumFinalPrice is the floor a non-positive final price is raised to.
var MinimumFinalPrice = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// LimitEnforcer checks price breakdowns against business limits.
type LimitEnforcer interface {
	// ApplyLimits corrects the breakdown and reports every correction made.
	ApplyLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) model.LimitResult
	// ApplyLimitsToTiers runs ApplyLimits on every tier.
	ApplyLimitsToTiers(pricing model.TierPricing, req model.PricingRequest, limits *model.PricingLimits) (model.TierPricing, []model.TierLimitResult)
	// ValidateLimitsStrict returns a model.LimitError for the first breached limit.
	ValidateLimitsStrict(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) error
}

// LimitEnforcerService implements LimitEnforcer.
type LimitEnforcerService struct{}

// NewLimitEnforcer creates a new LimitEnforcerService.
func NewLimitEnforcer() *LimitEnforcerService {
	return &LimitEnforcerService{}
}

// enforcement carries the breakdown through the correction stages.
type enforcement struct {
	price      model.PriceBreakdown
	violations []model.LimitViolation
}

func (e *enforcement) record(v model.LimitViolation) {
	e.violations = append(e.violations, v)
}

// ApplyLimits runs the correction stages in order: non-positive price, minimum
// price, minimum margin, maximum discount, cost-basis protection. Each stage
// works on the output of the previous one. Base cost and shipping are never
// changed; discounts are reduced final discount first and never go below zero.
func (s *LimitEnforcerService) ApplyLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) model.LimitResult {
	e := &enforcement{price: withQuantity(breakdown, req).Recompute()}

	s.fixNonPositivePrice(e)
	if !limits.IsEmpty() {
		s.enforceMinimumPrice(e, limits)
		s.enforceMinimumMargin(e, limits)
		s.enforceMaximumDiscount(e, limits)
		s.enforceCostBasis(e, limits)
	}

	if len(e.violations) == 0 {
		return model.LimitResult{Breakdown: breakdown, Violations: []model.LimitViolation{}}
	}

	log.Debug().
		Str("tier", string(e.price.Tier)).
		Int("violations", len(e.violations)).
		Str("original_price", breakdown.FinalPrice.StringFixed(2)).
		Str("adjusted_price", e.price.FinalPrice.StringFixed(2)).
		Msg("Price adjusted by limit enforcement")

	return model.LimitResult{Breakdown: e.price, Violations: e.violations, WasAdjusted: true}
}

// ApplyLimitsToTiers applies the limits to each tier independently.
func (s *LimitEnforcerService) ApplyLimitsToTiers(pricing model.TierPricing, req model.PricingRequest, limits *model.PricingLimits) (model.TierPricing, []model.TierLimitResult) {
	results := make([]model.TierLimitResult, 0, len(model.AllTiers))
	for _, tier := range model.AllTiers {
		price, _ := pricing.Get(tier)
		res := s.ApplyLimits(price, req, limits)
		pricing = pricing.With(tier, res.Breakdown)
		results = append(results, model.TierLimitResult{
			Tier:       tier,
			Violations: res.Violations,
			Adjusted:   res.WasAdjusted,
		})
	}
	return pricing, results
}

func (s *LimitEnforcerService) fixNonPositivePrice(e *enforcement) {
	p := e.price
	if p.FinalPrice.GreaterThan(decimal.Zero) {
		return
	}
	original := p.FinalPrice
	p = raisePrice(p, MinimumFinalPrice.Sub(p.FinalPrice), true)
	e.price = p
	e.record(model.LimitViolation{
		Type:          model.ViolationNegativePrice,
		Message:       fmt.Sprintf("final price %s was not positive, raised to %s", original.StringFixed(2), p.FinalPrice.StringFixed(2)),
		OriginalValue: original,
		AdjustedValue: p.FinalPrice,
		LimitValue:    MinimumFinalPrice,
	})
}

func (s *LimitEnforcerService) enforceMinimumPrice(e *enforcement, limits *model.PricingLimits) {
	if limits.MinimumPricePerUnit != nil && e.price.PricePerUnit.LessThan(*limits.MinimumPricePerUnit) {
		p := e.price
		original := p.PricePerUnit
		required := limits.MinimumPricePerUnit.Mul(decimal.NewFromInt(int64(p.Quantity)))
		p = raisePrice(p, required.Sub(p.FinalPrice), false)
		e.price = p
		e.record(model.LimitViolation{
			Type:          model.ViolationMinimumPricePerUnit,
			Message:       fmt.Sprintf("price per unit %s below minimum %s", original.StringFixed(2), limits.MinimumPricePerUnit.StringFixed(2)),
			OriginalValue: original,
			AdjustedValue: p.PricePerUnit,
			LimitValue:    *limits.MinimumPricePerUnit,
		})
	}

	if limits.MinimumTotalPrice != nil && e.price.FinalPrice.LessThan(*limits.MinimumTotalPrice) {
		p := e.price
		original := p.FinalPrice
		p = raisePrice(p, limits.MinimumTotalPrice.Sub(p.FinalPrice), false)
		e.price = p
		e.record(model.LimitViolation{
			Type:          model.ViolationMinimumTotalPrice,
			Message:       fmt.Sprintf("total price %s below minimum %s", original.StringFixed(2), limits.MinimumTotalPrice.StringFixed(2)),
			OriginalValue: original,
			AdjustedValue: p.FinalPrice,
			LimitValue:    *limits.MinimumTotalPrice,
		})
	}
}

func (s *LimitEnforcerService) enforceMinimumMargin(e *enforcement, limits *model.PricingLimits) {
	if limits.MinimumMarginPercentage != nil {
		required := e.price.BaseCost.Mul(*limits.MinimumMarginPercentage)
		if e.price.Margin.LessThan(required) {
			original := e.price.Margin
			e.price = raiseMargin(e.price, required)
			e.record(model.LimitViolation{
				Type: model.ViolationMinimumMargin,
				Message: fmt.Sprintf("margin %s below minimum %s%% of base cost (%s)",
					original.StringFixed(2), limits.MinimumMarginPercentage.Mul(hundred).StringFixed(2), required.StringFixed(2)),
				OriginalValue: original,
				AdjustedValue: e.price.Margin,
				LimitValue:    required,
			})
		}
	}

	if limits.MinimumMarginAmount != nil && e.price.Margin.LessThan(*limits.MinimumMarginAmount) {
		original := e.price.Margin
		e.price = raiseMargin(e.price, *limits.MinimumMarginAmount)
		e.record(model.LimitViolation{
			Type:          model.ViolationMinimumMarginAmount,
			Message:       fmt.Sprintf("margin %s below minimum amount %s", original.StringFixed(2), limits.MinimumMarginAmount.StringFixed(2)),
			OriginalValue: original,
			AdjustedValue: e.price.Margin,
			LimitValue:    *limits.MinimumMarginAmount,
		})
	}
}

func (s *LimitEnforcerService) enforceMaximumDiscount(e *enforcement, limits *model.PricingLimits) {
	if limits.MaximumDiscountPercentage == nil {
		return
	}
	p := e.price
	base := p.DiscountBase()
	if !base.IsPositive() {
		return
	}
	allowed := base.Mul(*limits.MaximumDiscountPercentage)
	if p.TotalDiscount().LessThanOrEqual(allowed) {
		return
	}

	original := p.TotalDiscount().Div(base)
	excess := p.TotalDiscount().Sub(allowed)
	p, _ = reduceDiscounts(p, excess, true)
	p = p.Recompute()
	e.price = p
	e.record(model.LimitViolation{
		Type: model.ViolationMaximumDiscount,
		Message: fmt.Sprintf("total discount %s%% exceeds maximum %s%%",
			original.Mul(hundred).StringFixed(2), limits.MaximumDiscountPercentage.Mul(hundred).StringFixed(2)),
		OriginalValue: original,
		AdjustedValue: p.TotalDiscount().Div(base),
		LimitValue:    *limits.MaximumDiscountPercentage,
	})
}

func (s *LimitEnforcerService) enforceCostBasis(e *enforcement, limits *model.PricingLimits) {
	if limits.MinimumPriceMultiplier == nil {
		return
	}
	floor := e.price.BaseCost.Mul(*limits.MinimumPriceMultiplier)
	if e.price.FinalPrice.GreaterThanOrEqual(floor) {
		return
	}
	original := e.price.FinalPrice
	e.price = raisePrice(e.price, floor.Sub(original), true)
	e.record(model.LimitViolation{
		Type: model.ViolationCostBasis,
		Message: fmt.Sprintf("final price %s below %sx base cost (%s)",
			original.StringFixed(2), limits.MinimumPriceMultiplier.String(), floor.StringFixed(2)),
		OriginalValue: original,
		AdjustedValue: e.price.FinalPrice,
		LimitValue:    floor,
	})
}

// ValidateLimitsStrict runs the same checks as ApplyLimits, in the same order,
// and returns the first breach without modifying anything.
func (s *LimitEnforcerService) ValidateLimitsStrict(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) error {
	p := withQuantity(breakdown, req).Recompute()

	if !p.FinalPrice.IsPositive() {
		return s.reject(&model.NegativePriceError{Tier: p.Tier, FinalPrice: p.FinalPrice})
	}
	if limits.IsEmpty() {
		return nil
	}

	if limit := limits.MinimumPricePerUnit; limit != nil && p.PricePerUnit.LessThan(*limit) {
		return s.reject(&model.BelowMinimumPriceError{Tier: p.Tier, Variant: model.VariantPerUnit, Price: p.PricePerUnit, Required: *limit})
	}
	if limit := limits.MinimumTotalPrice; limit != nil && p.FinalPrice.LessThan(*limit) {
		return s.reject(&model.BelowMinimumPriceError{Tier: p.Tier, Variant: model.VariantTotal, Price: p.FinalPrice, Required: *limit})
	}
	if limit := limits.MinimumMarginPercentage; limit != nil && p.Margin.LessThan(p.BaseCost.Mul(*limit)) {
		current := decimal.Zero
		if p.BaseCost.IsPositive() {
			current = p.Margin.Div(p.BaseCost)
		}
		return s.reject(&model.InsufficientMarginError{Tier: p.Tier, Margin: current, Required: *limit, Percentage: true})
	}
	if limit := limits.MinimumMarginAmount; limit != nil && p.Margin.LessThan(*limit) {
		return s.reject(&model.InsufficientMarginError{Tier: p.Tier, Margin: p.Margin, Required: *limit})
	}
	if limit := limits.MaximumDiscountPercentage; limit != nil && p.DiscountBase().IsPositive() {
		if p.TotalDiscount().GreaterThan(p.DiscountBase().Mul(*limit)) {
			pct := p.TotalDiscount().Div(p.DiscountBase())
			return s.reject(&model.ExcessiveDiscountError{Tier: p.Tier, DiscountPercentage: pct, Maximum: *limit})
		}
	}
	if mult := limits.MinimumPriceMultiplier; mult != nil {
		floor := p.BaseCost.Mul(*mult)
		if p.FinalPrice.LessThan(floor) {
			return s.reject(&model.BelowMinimumPriceError{Tier: p.Tier, Variant: model.VariantNxCost, Price: p.FinalPrice, Required: floor})
		}
	}
	return nil
}

func (s *LimitEnforcerService) reject(err model.LimitError) error {
	log.Info().
		Str("tier", string(err.TierName())).
		Str("violation", string(err.ViolationType())).
		Str("current", err.Current().String()).
		Str("limit", err.Limit().String()).
		Msg("Price rejected by strict limit validation")
	return err
}

// raisePrice lifts the final price by amount. Discounts are reduced first
// (only the final discount unless includeVolume is set); the remainder is
// added to margin.
func raisePrice(p model.PriceBreakdown, amount decimal.Decimal, includeVolume bool) model.PriceBreakdown {
	if !amount.IsPositive() {
		return p
	}
	p, reduced := reduceDiscounts(p, amount, includeVolume)
	if remainder := amount.Sub(reduced); remainder.IsPositive() {
		p.Margin = p.Margin.Add(remainder)
	}
	return p.Recompute()
}

// raiseMargin sets margin to required and funds the shortfall from discounts
// where available, final discount first.
func raiseMargin(p model.PriceBreakdown, required decimal.Decimal) model.PriceBreakdown {
	shortfall := required.Sub(p.Margin)
	p, _ = reduceDiscounts(p, shortfall, true)
	p.Margin = required
	return p.Recompute()
}

// reduceDiscounts removes up to amount from final discount, then volume
// discount, clamping each at zero. It returns the amount actually removed.
func reduceDiscounts(p model.PriceBreakdown, amount decimal.Decimal, includeVolume bool) (model.PriceBreakdown, decimal.Decimal) {
	remaining := amount
	take := decimal.Min(remaining, p.FinalDiscount)
	if take.IsPositive() {
		p.FinalDiscount = p.FinalDiscount.Sub(take)
		remaining = remaining.Sub(take)
	}
	if includeVolume && remaining.IsPositive() {
		take = decimal.Min(remaining, p.VolumeDiscount)
		if take.IsPositive() {
			p.VolumeDiscount = p.VolumeDiscount.Sub(take)
			remaining = remaining.Sub(take)
		}
	}
	return p, amount.Sub(remaining)
}

func withQuantity(p model.PriceBreakdown, req model.PricingRequest) model.PriceBreakdown {
	if p.Quantity <= 0 {
		p.Quantity = req.Quantity
	}
	return p
}
