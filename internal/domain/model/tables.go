package model

import "fmt"

// PricingTables bundles every lookup table the pricing core consumes.
type PricingTables struct {
	Version   int                           `json:"version"`
	Materials MaterialCostTable             `json:"materials"`
	Processes ProcessCostTable              `json:"processes"`
	Tiers     map[Tier]PricingConfiguration `json:"tiers"`
	Shipping  map[Tier]ShippingCost         `json:"shipping"`
}

// Validate checks every row and requires a configuration and shipping formula per tier.
func (t PricingTables) Validate() error {
	if len(t.Materials) == 0 {
		return NewValidationError("materials", "at least one material is required")
	}
	if len(t.Processes) == 0 {
		return NewValidationError("processes", "at least one process is required")
	}
	for name, m := range t.Materials {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("material %s: %w", name, err)
		}
	}
	for name, p := range t.Processes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("process %s: %w", name, err)
		}
	}
	for _, tier := range AllTiers {
		cfg, ok := t.Tiers[tier]
		if !ok {
			return NewValidationError("tiers", fmt.Sprintf("missing configuration for %s", tier))
		}
		if cfg.Tier != tier {
			return NewValidationError("tiers", fmt.Sprintf("configuration under %s is labelled %s", tier, cfg.Tier))
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
		ship, ok := t.Shipping[tier]
		if !ok {
			return NewValidationError("shipping", fmt.Sprintf("missing shipping for %s", tier))
		}
		if err := ship.Validate(); err != nil {
			return fmt.Errorf("shipping %s: %w", tier, err)
		}
	}
	return nil
}
