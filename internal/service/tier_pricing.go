package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// TierPriceCalculator derives customer prices from a cost breakdown.
type TierPriceCalculator interface {
	// CalculateTierPrice prices the order with one tier's configuration and shipping formula.
	CalculateTierPrice(req model.PricingRequest, cfg model.PricingConfiguration, shipping model.ShippingCost) model.PriceBreakdown
	// CalculateTierPricing prices the order in every tier concurrently.
	CalculateTierPricing(ctx context.Context, req model.PricingRequest, configs map[model.Tier]model.PricingConfiguration, shippings map[model.Tier]model.ShippingCost) (model.TierPricing, error)
}

// TierPriceCalculatorService implements TierPriceCalculator.
type TierPriceCalculatorService struct{}

// NewTierPriceCalculator creates a new TierPriceCalculatorService.
func NewTierPriceCalculator() *TierPriceCalculatorService {
	return &TierPriceCalculatorService{}
}

// CalculateTierPrice computes base cost, margin, shipping, volume discount,
// complexity surcharge and customer discounts for one tier.
// The breakdown is labelled with cfg.Tier.
func (c *TierPriceCalculatorService) CalculateTierPrice(req model.PricingRequest, cfg model.PricingConfiguration, shipping model.ShippingCost) model.PriceBreakdown {
	qty := decimal.NewFromInt(int64(req.Quantity))

	baseCost := req.CostBreakdown.TotalCost.Mul(qty)
	margin := baseCost.Mul(cfg.MarginPercentage)
	discountBase := baseCost.Add(margin)

	var surcharge decimal.Decimal
	if req.ComplexityScore.GreaterThanOrEqual(cfg.ComplexitySurchargeThreshold) {
		surcharge = discountBase.Mul(cfg.ComplexitySurchargeRate)
	}

	return model.PriceBreakdown{
		Tier:                cfg.Tier,
		Quantity:            req.Quantity,
		BaseCost:            baseCost,
		Margin:              margin,
		ShippingCost:        ShippingFor(req, shipping),
		VolumeDiscount:      discountBase.Mul(cfg.VolumeDiscountRate(req.Quantity)),
		ComplexitySurcharge: surcharge,
		FinalDiscount:       discountBase.Mul(CustomerDiscountRate(req.CustomerTier, req.Quantity)),
	}.Recompute()
}

// CalculateTierPricing runs CalculateTierPrice once per tier. Tiers share no state,
// so they are computed in parallel.
func (c *TierPriceCalculatorService) CalculateTierPricing(ctx context.Context, req model.PricingRequest, configs map[model.Tier]model.PricingConfiguration, shippings map[model.Tier]model.ShippingCost) (model.TierPricing, error) {
	var (
		mu      sync.Mutex
		pricing model.TierPricing
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, tier := range model.AllTiers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg, ok := configs[tier]
			if !ok {
				return model.NewValidationError("tiers", fmt.Sprintf("missing configuration for %s", tier))
			}
			shipping, ok := shippings[tier]
			if !ok {
				return model.NewValidationError("shipping", fmt.Sprintf("missing shipping for %s", tier))
			}
			cfg.Tier = tier

			price := c.CalculateTierPrice(req, cfg, shipping)

			mu.Lock()
			pricing = pricing.With(tier, price)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.TierPricing{}, err
	}
	return pricing, nil
}

// ShippingFor returns (base + max(weight charge, volume charge)) scaled by the zone multiplier.
func ShippingFor(req model.PricingRequest, shipping model.ShippingCost) decimal.Decimal {
	qty := decimal.NewFromInt(int64(req.Quantity))
	byWeight := req.PartWeightKG.Mul(qty).Mul(shipping.WeightFactor)
	byVolume := req.PartVolumeCM3.Mul(qty).Mul(shipping.VolumeFactor)
	return shipping.BaseCost.Add(decimal.Max(byWeight, byVolume)).Mul(shipping.ZoneMultiplier(req.ShippingZone))
}

// CustomerDiscountRate sums the premium customer and bulk order discount rates.
func CustomerDiscountRate(customerTier model.CustomerTier, quantity int) decimal.Decimal {
	rate := decimal.Zero
	if customerTier == model.CustomerTierPremium {
		rate = rate.Add(model.PremiumCustomerDiscountRate)
	}
	if quantity >= model.BulkOrderQuantity {
		rate = rate.Add(model.BulkOrderDiscountRate)
	}
	return rate
}
