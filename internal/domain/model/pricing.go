package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is a service level with its own pricing configuration.
type Tier string

// Service tiers, ordered from fastest to slowest.
const (
	TierExpedited       Tier = "expedited"
	TierStandard        Tier = "standard"
	TierEconomy         Tier = "economy"
	TierDomesticEconomy Tier = "domestic_economy"
)

// AllTiers lists every tier in presentation order.
var AllTiers = []Tier{TierExpedited, TierStandard, TierEconomy, TierDomesticEconomy}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierExpedited, TierStandard, TierEconomy, TierDomesticEconomy:
		return true
	default:
		return false
	}
}

// CustomerTier is the customer's account level. Only "premium" carries a discount.
type CustomerTier string

// Customer tiers.
const (
	CustomerTierStandard CustomerTier = "standard"
	CustomerTierPremium  CustomerTier = "premium"
)

var (
	// PremiumCustomerDiscountRate applies to premium customers.
	PremiumCustomerDiscountRate = decimal.RequireFromString("0.05")
	// BulkOrderDiscountRate applies to orders of BulkOrderQuantity or more.
	BulkOrderDiscountRate = decimal.RequireFromString("0.02")
)

// BulkOrderQuantity is the quantity from which the bulk discount applies.
const BulkOrderQuantity = 100

// ShippingZone is a distance band from 1 (nearest) to 4 (farthest).
type ShippingZone int

// Shipping zones.
const (
	Zone1 ShippingZone = 1
	Zone2 ShippingZone = 2
	Zone3 ShippingZone = 3
	Zone4 ShippingZone = 4
)

// Valid reports whether z is between 1 and 4.
func (z ShippingZone) Valid() bool {
	return z >= Zone1 && z <= Zone4
}

// DefaultDistanceMultipliers scales shipping cost by zone.
func DefaultDistanceMultipliers() map[ShippingZone]decimal.Decimal {
	return map[ShippingZone]decimal.Decimal{
		Zone1: decimal.RequireFromString("1.0"),
		Zone2: decimal.RequireFromString("1.3"),
		Zone3: decimal.RequireFromString("1.8"),
		Zone4: decimal.RequireFromString("2.5"),
	}
}

// VolumeDiscountThreshold grants Rate once the order quantity reaches Quantity.
type VolumeDiscountThreshold struct {
	Quantity int             `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

// PricingConfiguration holds the margin, discount and surcharge rules of a tier.
type PricingConfiguration struct {
	Tier                         Tier                      `json:"tier"`
	MarginPercentage             decimal.Decimal           `json:"margin_percentage"`
	VolumeDiscountThresholds     []VolumeDiscountThreshold `json:"volume_discount_thresholds"`
	ComplexitySurchargeThreshold decimal.Decimal           `json:"complexity_surcharge_threshold"`
	ComplexitySurchargeRate      decimal.Decimal           `json:"complexity_surcharge_rate"`
}

// NewPricingConfiguration validates a tier configuration.
func NewPricingConfiguration(tier Tier, margin decimal.Decimal, thresholds []VolumeDiscountThreshold, surchargeThreshold, surchargeRate decimal.Decimal) (PricingConfiguration, error) {
	cfg := PricingConfiguration{
		Tier:                         tier,
		MarginPercentage:             margin,
		VolumeDiscountThresholds:     thresholds,
		ComplexitySurchargeThreshold: surchargeThreshold,
		ComplexitySurchargeRate:      surchargeRate,
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration invariants.
func (c PricingConfiguration) Validate() error {
	if !c.Tier.Valid() {
		return NewValidationError("tier", "must be one of expedited, standard, economy, domestic_economy")
	}
	if c.MarginPercentage.IsNegative() {
		return NewValidationError("margin_percentage", "must be >= 0")
	}
	if err := ValidateComplexityScore("complexity_surcharge_threshold", c.ComplexitySurchargeThreshold); err != nil {
		return err
	}
	if c.ComplexitySurchargeRate.IsNegative() {
		return NewValidationError("complexity_surcharge_rate", "must be >= 0")
	}
	for _, th := range c.VolumeDiscountThresholds {
		if th.Quantity <= 0 {
			return NewValidationError("volume_discount_thresholds.quantity", "must be greater than 0")
		}
		if th.Rate.IsNegative() || th.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return NewValidationError("volume_discount_thresholds.rate", "must be between 0 and 1")
		}
	}
	return nil
}

// VolumeDiscountRate returns the rate of the highest threshold not exceeding quantity.
func (c PricingConfiguration) VolumeDiscountRate(quantity int) decimal.Decimal {
	thresholds := make([]VolumeDiscountThreshold, len(c.VolumeDiscountThresholds))
	copy(thresholds, c.VolumeDiscountThresholds)
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].Quantity > thresholds[j].Quantity
	})
	for _, th := range thresholds {
		if quantity >= th.Quantity {
			return th.Rate
		}
	}
	return decimal.Zero
}

// ShippingCost is the shipping formula of a tier.
type ShippingCost struct {
	BaseCost            decimal.Decimal                  `json:"base_cost"`
	WeightFactor        decimal.Decimal                  `json:"weight_factor"`
	VolumeFactor        decimal.Decimal                  `json:"volume_factor"`
	DistanceMultipliers map[ShippingZone]decimal.Decimal `json:"distance_multipliers"`
}

// NewShippingCost builds a shipping formula with the default zone multipliers.
func NewShippingCost(base, weightFactor, volumeFactor decimal.Decimal) (ShippingCost, error) {
	s := ShippingCost{
		BaseCost:            base,
		WeightFactor:        weightFactor,
		VolumeFactor:        volumeFactor,
		DistanceMultipliers: DefaultDistanceMultipliers(),
	}
	return s, s.Validate()
}

// Validate checks the shipping formula invariants.
func (s ShippingCost) Validate() error {
	if s.BaseCost.IsNegative() {
		return NewValidationError("base_cost", "must be >= 0")
	}
	if s.WeightFactor.IsNegative() {
		return NewValidationError("weight_factor", "must be >= 0")
	}
	if s.VolumeFactor.IsNegative() {
		return NewValidationError("volume_factor", "must be >= 0")
	}
	for zone, m := range s.DistanceMultipliers {
		if !zone.Valid() {
			return NewValidationError("distance_multipliers", "zone must be between 1 and 4")
		}
		if m.IsNegative() {
			return NewValidationError("distance_multipliers", "multiplier must be >= 0")
		}
	}
	return nil
}

// ZoneMultiplier returns the multiplier for zone, falling back to the default table.
func (s ShippingCost) ZoneMultiplier(zone ShippingZone) decimal.Decimal {
	if m, ok := s.DistanceMultipliers[zone]; ok {
		return m
	}
	if m, ok := DefaultDistanceMultipliers()[zone]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// PricingRequest carries everything the tier calculator needs about an order.
type PricingRequest struct {
	CostBreakdown   CostBreakdown   `json:"cost_breakdown"`
	ComplexityScore decimal.Decimal `json:"complexity_score"`
	PartWeightKG    decimal.Decimal `json:"part_weight_kg"`
	PartVolumeCM3   decimal.Decimal `json:"part_volume_cm3"`
	Quantity        int             `json:"quantity"`
	CustomerTier    CustomerTier    `json:"customer_tier"`
	ShippingZone    ShippingZone    `json:"shipping_zone"`
}

// NewPricingRequest validates a pricing request.
func NewPricingRequest(cost CostBreakdown, complexity, weightKG, volumeCM3 decimal.Decimal, quantity int, customerTier CustomerTier, zone ShippingZone) (PricingRequest, error) {
	r := PricingRequest{
		CostBreakdown:   cost,
		ComplexityScore: complexity,
		PartWeightKG:    weightKG,
		PartVolumeCM3:   volumeCM3,
		Quantity:        quantity,
		CustomerTier:    customerTier,
		ShippingZone:    zone,
	}
	return r, r.Validate()
}

// Validate checks the request invariants.
func (r PricingRequest) Validate() error {
	if err := ValidateComplexityScore("complexity_score", r.ComplexityScore); err != nil {
		return err
	}
	if !r.PartWeightKG.IsPositive() {
		return NewValidationError("part_weight_kg", "must be greater than 0")
	}
	if !r.PartVolumeCM3.IsPositive() {
		return NewValidationError("part_volume_cm3", "must be greater than 0")
	}
	if r.Quantity <= 0 {
		return NewValidationError("quantity", "must be greater than 0")
	}
	if !r.ShippingZone.Valid() {
		return NewValidationError("shipping_zone", "must be between 1 and 4")
	}
	return nil
}

// PriceBreakdown is the price of an order in one tier.
//
//	subtotal       = base_cost + margin + shipping_cost + complexity_surcharge - volume_discount
//	final_price    = subtotal - final_discount
//	price_per_unit = final_price / quantity
type PriceBreakdown struct {
	Tier                Tier            `json:"tier"`
	Quantity            int             `json:"quantity"`
	BaseCost            decimal.Decimal `json:"base_cost"`
	Margin              decimal.Decimal `json:"margin"`
	ShippingCost        decimal.Decimal `json:"shipping_cost"`
	VolumeDiscount      decimal.Decimal `json:"volume_discount"`
	ComplexitySurcharge decimal.Decimal `json:"complexity_surcharge"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	FinalDiscount       decimal.Decimal `json:"final_discount"`
	FinalPrice          decimal.Decimal `json:"final_price"`
	PricePerUnit        decimal.Decimal `json:"price_per_unit"`
}

// Recompute returns a copy with subtotal, final price and unit price derived
// from the component fields.
func (p PriceBreakdown) Recompute() PriceBreakdown {
	p.Subtotal = p.BaseCost.Add(p.Margin).Add(p.ShippingCost).Add(p.ComplexitySurcharge).Sub(p.VolumeDiscount)
	p.FinalPrice = p.Subtotal.Sub(p.FinalDiscount)
	if p.Quantity > 0 {
		p.PricePerUnit = p.FinalPrice.Div(decimal.NewFromInt(int64(p.Quantity)))
	} else {
		p.PricePerUnit = p.FinalPrice
	}
	return p
}

// TotalDiscount returns volume discount plus final discount.
func (p PriceBreakdown) TotalDiscount() decimal.Decimal {
	return p.VolumeDiscount.Add(p.FinalDiscount)
}

// DiscountBase returns base cost plus margin, the amount discounts are measured against.
func (p PriceBreakdown) DiscountBase() decimal.Decimal {
	return p.BaseCost.Add(p.Margin)
}

// Equal reports whether every monetary field of p and o is numerically equal.
func (p PriceBreakdown) Equal(o PriceBreakdown) bool {
	return p.Tier == o.Tier &&
		p.Quantity == o.Quantity &&
		p.BaseCost.Equal(o.BaseCost) &&
		p.Margin.Equal(o.Margin) &&
		p.ShippingCost.Equal(o.ShippingCost) &&
		p.VolumeDiscount.Equal(o.VolumeDiscount) &&
		p.ComplexitySurcharge.Equal(o.ComplexitySurcharge) &&
		p.Subtotal.Equal(o.Subtotal) &&
		p.FinalDiscount.Equal(o.FinalDiscount) &&
		p.FinalPrice.Equal(o.FinalPrice) &&
		p.PricePerUnit.Equal(o.PricePerUnit)
}

// TierPricing holds one price breakdown per tier.
type TierPricing struct {
	Expedited       PriceBreakdown `json:"expedited"`
	Standard        PriceBreakdown `json:"standard"`
	Economy         PriceBreakdown `json:"economy"`
	DomesticEconomy PriceBreakdown `json:"domestic_economy"`
}

// Get returns the breakdown of tier.
func (t TierPricing) Get(tier Tier) (PriceBreakdown, bool) {
	switch tier {
	case TierExpedited:
		return t.Expedited, true
	case TierStandard:
		return t.Standard, true
	case TierEconomy:
		return t.Economy, true
	case TierDomesticEconomy:
		return t.DomesticEconomy, true
	default:
		return PriceBreakdown{}, false
	}
}

// With returns a copy with the breakdown of tier replaced.
func (t TierPricing) With(tier Tier, p PriceBreakdown) TierPricing {
	switch tier {
	case TierExpedited:
		t.Expedited = p
	case TierStandard:
		t.Standard = p
	case TierEconomy:
		t.Economy = p
	case TierDomesticEconomy:
		t.DomesticEconomy = p
	}
	return t
}

// Cheapest returns the tier with the lowest final price. Ties go to the faster tier.
func (t TierPricing) Cheapest() (Tier, PriceBreakdown) {
	best := AllTiers[0]
	bestPrice, _ := t.Get(best)
	for _, tier := range AllTiers[1:] {
		p, _ := t.Get(tier)
		if p.FinalPrice.LessThan(bestPrice.FinalPrice) {
			best, bestPrice = tier, p
		}
	}
	return best, bestPrice
}
