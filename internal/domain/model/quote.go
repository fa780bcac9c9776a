package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the full result of pricing one order across every tier.
//
// @Description Fabrication quote with cost breakdown, cost range and per-tier prices
type Quote struct {
	ID            string            `json:"id" example:"5f0c7e0e-8a8e-4a9b-9a51-0c3b6d1c9f10"`
	CreatedAt     time.Time         `json:"created_at"`
	Part          PartSpecification `json:"part"`
	Quantity      int               `json:"quantity" example:"10"`
	CustomerTier  CustomerTier      `json:"customer_tier" example:"standard"`
	ShippingZone  ShippingZone      `json:"shipping_zone" example:"1"`
	PartWeightKG  decimal.Decimal   `json:"part_weight_kg"`
	PartVolumeCM3 decimal.Decimal   `json:"part_volume_cm3"`
	CostBreakdown CostBreakdown     `json:"cost_breakdown"`
	CostRange     CostRange         `json:"cost_range"`
	Pricing       TierPricing       `json:"pricing"`
	Limits        []TierLimitResult `json:"limits,omitempty"`
	Strict        bool              `json:"strict"`
	TableVersion  int               `json:"table_version,omitempty"`
}

// TierLimitResult labels a LimitResult with the tier it was produced for.
type TierLimitResult struct {
	Tier       Tier             `json:"tier"`
	Violations []LimitViolation `json:"violations"`
	Adjusted   bool             `json:"was_adjusted"`
}

// WasAdjusted reports whether any tier was corrected by limit enforcement.
func (q Quote) WasAdjusted() bool {
	for _, l := range q.Limits {
		if l.Adjusted {
			return true
		}
	}
	return false
}

// ViolationCount returns the number of violations across every tier.
func (q Quote) ViolationCount() int {
	n := 0
	for _, l := range q.Limits {
		n += len(l.Violations)
	}
	return n
}
