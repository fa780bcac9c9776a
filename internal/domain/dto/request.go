// Package dto defines the JSON bodies of the quote API and their conversion
// to domain values.
//
// Binding tags are checked by gin's validator (see RegisterValidators); the
// ToModel methods then build the domain values through their constructors,
// which enforce the remaining invariants.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/service"
)

// DimensionsRequest is the bounding box of a part in millimetres.
type DimensionsRequest struct {
	LengthMM decimal.Decimal `json:"length_mm" binding:"gt=0" swaggertype:"number" example:"100"`
	WidthMM  decimal.Decimal `json:"width_mm" binding:"gt=0" swaggertype:"number" example:"50"`
	HeightMM decimal.Decimal `json:"height_mm" binding:"gt=0" swaggertype:"number" example:"25"`
}

// PartRequest describes the part to be manufactured.
//
// @Description Part specification
type PartRequest struct {
	Dimensions      DimensionsRequest `json:"dimensions"`
	ComplexityScore decimal.Decimal   `json:"complexity_score" binding:"gte=1,lte=5" swaggertype:"number" example:"2.5"`
	Material        string            `json:"material" binding:"required" example:"aluminum"`
	Process         string            `json:"process" binding:"required" example:"cnc_machining"`
} // @name PartRequest

// ToModel builds a validated part specification.
func (r PartRequest) ToModel() (model.PartSpecification, error) {
	dims, err := model.NewPartDimensions(r.Dimensions.LengthMM, r.Dimensions.WidthMM, r.Dimensions.HeightMM)
	if err != nil {
		return model.PartSpecification{}, err
	}
	return model.NewPartSpecification(dims, r.ComplexityScore, model.MaterialType(r.Material), model.ProcessType(r.Process))
}

// LimitsRequest overrides the server's business limits for one request.
// Omitted fields disable their check.
//
// @Description Optional business-safety limits
type LimitsRequest struct {
	MinimumPricePerUnit       *decimal.Decimal `json:"minimum_price_per_unit,omitempty" binding:"omitempty,gte=0" swaggertype:"number" example:"10"`
	MinimumTotalPrice         *decimal.Decimal `json:"minimum_total_price,omitempty" binding:"omitempty,gte=0" swaggertype:"number" example:"100"`
	MinimumMarginPercentage   *decimal.Decimal `json:"minimum_margin_percentage,omitempty" binding:"omitempty,gte=0" swaggertype:"number" example:"0.2"`
	MinimumMarginAmount       *decimal.Decimal `json:"minimum_margin_amount,omitempty" binding:"omitempty,gte=0" swaggertype:"number" example:"25"`
	MaximumDiscountPercentage *decimal.Decimal `json:"maximum_discount_percentage,omitempty" binding:"omitempty,gte=0,lte=1" swaggertype:"number" example:"0.3"`
	MinimumPriceMultiplier    *decimal.Decimal `json:"minimum_price_multiplier,omitempty" binding:"omitempty,gte=0" swaggertype:"number" example:"1.1"`
} // @name LimitsRequest

// ToModel returns validated limits, or nil when r is nil.
func (r *LimitsRequest) ToModel() (*model.PricingLimits, error) {
	if r == nil {
		return nil, nil
	}
	var opts []model.LimitOption
	if r.MinimumPricePerUnit != nil {
		opts = append(opts, model.WithMinimumPricePerUnit(*r.MinimumPricePerUnit))
	}
	if r.MinimumTotalPrice != nil {
		opts = append(opts, model.WithMinimumTotalPrice(*r.MinimumTotalPrice))
	}
	if r.MinimumMarginPercentage != nil {
		opts = append(opts, model.WithMinimumMarginPercentage(*r.MinimumMarginPercentage))
	}
	if r.MinimumMarginAmount != nil {
		opts = append(opts, model.WithMinimumMarginAmount(*r.MinimumMarginAmount))
	}
	if r.MaximumDiscountPercentage != nil {
		opts = append(opts, model.WithMaximumDiscountPercentage(*r.MaximumDiscountPercentage))
	}
	if r.MinimumPriceMultiplier != nil {
		opts = append(opts, model.WithMinimumPriceMultiplier(*r.MinimumPriceMultiplier))
	}
	return model.NewPricingLimits(opts...)
}

// QuoteRequest is the body of POST /api/quotes.
//
// @Description Request a fabrication quote across every service tier
type QuoteRequest struct {
	Part         PartRequest `json:"part"`
	Quantity     int         `json:"quantity" binding:"required,gt=0" example:"10" minimum:"1"`
	CustomerTier string      `json:"customer_tier,omitempty" binding:"omitempty,customer_tier" example:"standard" enums:"standard,premium"`
	ShippingZone int         `json:"shipping_zone" binding:"shipping_zone" example:"1" minimum:"1" maximum:"4"`
	// PartWeightKG is derived from the material density when omitted.
	PartWeightKG *decimal.Decimal `json:"part_weight_kg,omitempty" binding:"omitempty,gt=0" swaggertype:"number" example:"0.34"`
	Limits       *LimitsRequest   `json:"limits,omitempty"`
	// Strict rejects prices that breach a limit instead of correcting them.
	Strict *bool `json:"strict,omitempty" example:"false"`
} // @name QuoteRequest

// ToModel converts the body into a service request for clientID.
func (r QuoteRequest) ToModel(clientID string) (service.QuoteRequest, error) {
	part, err := r.Part.ToModel()
	if err != nil {
		return service.QuoteRequest{}, err
	}
	limits, err := r.Limits.ToModel()
	if err != nil {
		return service.QuoteRequest{}, err
	}

	req := service.QuoteRequest{
		Part:         part,
		Quantity:     r.Quantity,
		CustomerTier: model.CustomerTier(r.CustomerTier),
		ShippingZone: model.ShippingZone(r.ShippingZone),
		Limits:       limits,
		Strict:       r.Strict,
		ClientID:     clientID,
	}
	if r.PartWeightKG != nil {
		req.PartWeightKG = *r.PartWeightKG
	}
	return req, nil
}

// CostRequest is the body of POST /api/costs.
//
// @Description Request the manufacturing cost of one part
type CostRequest struct {
	Part PartRequest `json:"part"`
} // @name CostRequest

// PriceBreakdownRequest carries the components of a tier price. Subtotal,
// final price and unit price are always recomputed from them.
type PriceBreakdownRequest struct {
	Tier                string          `json:"tier" binding:"tier" example:"standard"`
	BaseCost            decimal.Decimal `json:"base_cost" binding:"gte=0" swaggertype:"number" example:"1000"`
	Margin              decimal.Decimal `json:"margin" swaggertype:"number" example:"250"`
	ShippingCost        decimal.Decimal `json:"shipping_cost" binding:"gte=0" swaggertype:"number" example:"20"`
	VolumeDiscount      decimal.Decimal `json:"volume_discount" binding:"gte=0" swaggertype:"number" example:"0"`
	ComplexitySurcharge decimal.Decimal `json:"complexity_surcharge" binding:"gte=0" swaggertype:"number" example:"0"`
	FinalDiscount       decimal.Decimal `json:"final_discount" binding:"gte=0" swaggertype:"number" example:"0"`
}

// LimitsCheckRequest is the body of POST /api/limits/apply and /api/limits/validate.
//
// @Description A tier price to check against business limits
type LimitsCheckRequest struct {
	Breakdown PriceBreakdownRequest `json:"breakdown"`
	Quantity  int                   `json:"quantity" binding:"required,gt=0" example:"10" minimum:"1"`
	// Limits overrides the server limits when set.
	Limits *LimitsRequest `json:"limits,omitempty"`
} // @name LimitsCheckRequest

// ToModel returns the breakdown, the pricing request context and the limit override.
func (r LimitsCheckRequest) ToModel() (model.PriceBreakdown, model.PricingRequest, *model.PricingLimits, error) {
	limits, err := r.Limits.ToModel()
	if err != nil {
		return model.PriceBreakdown{}, model.PricingRequest{}, nil, err
	}
	tier := model.Tier(r.Breakdown.Tier)
	if !tier.Valid() {
		return model.PriceBreakdown{}, model.PricingRequest{}, nil, model.NewValidationError("tier", "is not a known tier")
	}
	if r.Quantity <= 0 {
		return model.PriceBreakdown{}, model.PricingRequest{}, nil, model.NewValidationError("quantity", "must be greater than 0")
	}

	breakdown := model.PriceBreakdown{
		Tier:                tier,
		Quantity:            r.Quantity,
		BaseCost:            r.Breakdown.BaseCost,
		Margin:              r.Breakdown.Margin,
		ShippingCost:        r.Breakdown.ShippingCost,
		VolumeDiscount:      r.Breakdown.VolumeDiscount,
		ComplexitySurcharge: r.Breakdown.ComplexitySurcharge,
		FinalDiscount:       r.Breakdown.FinalDiscount,
	}.Recompute()

	return breakdown, model.PricingRequest{Quantity: r.Quantity}, limits, nil
}

// UpdatePricingTablesRequest is the body of PUT /api/pricing-tables.
//
// @Description Replace the active pricing tables with a new version
type UpdatePricingTablesRequest struct {
	Tables model.PricingTables `json:"tables"`
	// UpdatedBy is recorded on the new version. Defaults to the API client.
	UpdatedBy string `json:"updated_by,omitempty" example:"pricing-team"`
} // @name UpdatePricingTablesRequest

// LogQueryRequest filters GET /api/logs. Times are RFC 3339.
type LogQueryRequest struct {
	QuoteID   string    `form:"quote_id"`
	RequestID string    `form:"request_id"`
	ClientID  string    `form:"client_id"`
	Action    string    `form:"action"`
	Level     string    `form:"level" binding:"omitempty,oneof=debug info warn error fatal panic trace"`
	Since     time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until     time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int       `form:"limit" binding:"omitempty,min=1,max=500"`
	Skip      int       `form:"skip" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a log filter.
func (r LogQueryRequest) ToFilter() (model.LogFilter, error) {
	if !r.Since.IsZero() && !r.Until.IsZero() && r.Until.Before(r.Since) {
		return model.LogFilter{}, model.NewValidationError("until", "must not be before since")
	}
	return model.LogFilter{
		QuoteID:   r.QuoteID,
		RequestID: r.RequestID,
		ClientID:  r.ClientID,
		Action:    r.Action,
		Level:     r.Level,
		Since:     r.Since,
		Until:     r.Until,
		Limit:     r.Limit,
		Skip:      r.Skip,
	}, nil
}
