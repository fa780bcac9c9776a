package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/logger"
	"github.com/guttosm/quote-service/internal/metrics"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service/cache"
)

var gramsPerKG = decimal.NewFromInt(1000)

// QuoteRequest is everything a customer supplies to get a quote.
type QuoteRequest struct {
	Part         model.PartSpecification
	Quantity     int
	CustomerTier model.CustomerTier
	ShippingZone model.ShippingZone
	// PartWeightKG is derived from the material density when zero.
	PartWeightKG decimal.Decimal
	// Limits overrides the service limits when set.
	Limits *model.PricingLimits
	// Strict overrides the service strict mode when set.
	Strict   *bool
	ClientID string
}

// CostEstimate is the manufacturing cost of one part and its complexity range.
type CostEstimate struct {
	Breakdown    model.CostBreakdown `json:"cost_breakdown"`
	Range        model.CostRange     `json:"cost_range"`
	TableVersion int                 `json:"table_version"`
}

// QuoteService prices fabrication orders.
type QuoteService interface {
	// Quote costs the part, prices it in every tier and enforces the pricing limits.
	Quote(ctx context.Context, req QuoteRequest) (model.Quote, error)
	// Get returns a stored quote.
	Get(ctx context.Context, id string) (model.Quote, error)
	// Cost returns the cost breakdown and cost range of a part.
	Cost(ctx context.Context, spec model.PartSpecification) (CostEstimate, error)
	// ApplyLimits corrects a single breakdown. Nil limits fall back to the service limits.
	ApplyLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) model.LimitResult
	// ValidateLimits checks a single breakdown strictly. Nil limits fall back to the service limits.
	ValidateLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) error
	// InvalidateCache drops memoized quotes.
	InvalidateCache()
}

// Option configures a QuoteServiceImpl.
type Option func(*QuoteServiceImpl)

// QuoteServiceImpl implements QuoteService on top of the pricing core.
type QuoteServiceImpl struct {
	costs    CostEngine
	tiers    TierPriceCalculator
	enforcer LimitEnforcer
	tables   PricingTablesService
	quotes   repository.QuotesRepositoryInterface
	cache    cache.Cache
	limits   *model.PricingLimits
	strict   bool
	now      func() time.Time
}

// NewQuoteService creates a quote service with the built-in tables and no limits.
func NewQuoteService(opts ...Option) *QuoteServiceImpl {
	s := &QuoteServiceImpl{
		costs:    NewCostEngine(),
		tiers:    NewTierPriceCalculator(),
		enforcer: NewLimitEnforcer(),
		tables:   NewPricingTablesService(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLimits sets the limits applied when a request carries none.
func WithLimits(limits *model.PricingLimits) Option {
	return func(s *QuoteServiceImpl) {
		s.limits = limits
	}
}

// WithStrict makes strict validation the default.
func WithStrict(strict bool) Option {
	return func(s *QuoteServiceImpl) {
		s.strict = strict
	}
}

// WithTables sets where pricing tables are read from.
func WithTables(tables PricingTablesService) Option {
	return func(s *QuoteServiceImpl) {
		if tables != nil {
			s.tables = tables
		}
	}
}

// WithQuoteRepository persists every computed quote.
func WithQuoteRepository(repo repository.QuotesRepositoryInterface) Option {
	return func(s *QuoteServiceImpl) {
		s.quotes = repo
	}
}

// WithCache memoizes up to capacity quotes in process for ttl.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(s *QuoteServiceImpl) {
		if capacity > 0 {
			s.cache = cache.NewLocal(capacity, ttl, 0)
		}
	}
}

// WithSharedCache puts a shared tier behind the in-process cache, or uses
// it alone when WithCache is not set. Apply it after WithCache.
func WithSharedCache(shared cache.Cache) Option {
	return func(s *QuoteServiceImpl) {
		switch {
		case shared == nil:
		case s.cache == nil:
			s.cache = shared
		default:
			s.cache = cache.NewTiered(s.cache, shared)
		}
	}
}

// WithCore replaces the pricing core components. Nil arguments keep the defaults.
func WithCore(costs CostEngine, tiers TierPriceCalculator, enforcer LimitEnforcer) Option {
	return func(s *QuoteServiceImpl) {
		if costs != nil {
			s.costs = costs
		}
		if tiers != nil {
			s.tiers = tiers
		}
		if enforcer != nil {
			s.enforcer = enforcer
		}
	}
}

// WithClock sets the time source used for quote timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuoteServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *QuoteServiceImpl) Quote(ctx context.Context, req QuoteRequest) (model.Quote, error) {
	start := time.Now()

	quote, err := s.quote(ctx, req)

	status := "success"
	switch {
	case errors.Is(err, model.ErrPriceLimit):
		status = "rejected"
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrUnsupportedMaterial),
		errors.Is(err, model.ErrUnsupportedProcess):
		status = "invalid"
	case err != nil:
		status = "error"
	}
	metrics.RecordQuote(time.Since(start), status)

	return quote, err
}

func (s *QuoteServiceImpl) quote(ctx context.Context, req QuoteRequest) (model.Quote, error) {
	if err := validateQuoteRequest(req); err != nil {
		return model.Quote{}, err
	}
	if req.CustomerTier == "" {
		req.CustomerTier = model.CustomerTierStandard
	}
	limits := s.limitsFor(req.Limits)
	strict := s.strict
	if req.Strict != nil {
		strict = *req.Strict
	}

	tables, err := s.tables.Active(ctx)
	if err != nil {
		return model.Quote{}, err
	}

	key := fingerprint(req, limits, strict, tables.Version)
	priced, hit := model.Quote{}, false
	if s.cache != nil {
		priced, hit = s.cache.Get(ctx, key)
	}
	if !hit {
		priced, err = s.price(ctx, req, tables, limits, strict)
		if err != nil {
			return model.Quote{}, err
		}
		if s.cache != nil {
			s.cache.Set(ctx, key, priced)
		}
	}

	// Memoized pricing is shared; the issued quote belongs to this caller.
	quote := priced
	quote.ID = uuid.NewString()
	quote.CreatedAt = s.now().UTC()

	if s.quotes != nil {
		if err := s.quotes.Create(ctx, quote, req.ClientID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("quote_id", quote.ID).Msg("Failed to persist quote")
		}
	}

	cheapest, _ := quote.Pricing.Cheapest()
	logger.Ctx(ctx).Debug().
		Str("quote_id", quote.ID).
		Str("material", string(req.Part.Material)).
		Str("process", string(req.Part.Process)).
		Int("quantity", req.Quantity).
		Str("cheapest_tier", string(cheapest)).
		Int("violations", quote.ViolationCount()).
		Bool("memoized", hit).
		Msg("Quote computed")

	return quote, nil
}

// price runs the cost, tier and limit pipeline. The result carries no identity.
func (s *QuoteServiceImpl) price(ctx context.Context, req QuoteRequest, tables model.PricingTables, limits *model.PricingLimits, strict bool) (model.Quote, error) {
	estimate, err := s.estimate(req.Part, tables)
	if err != nil {
		return model.Quote{}, err
	}

	volume := req.Part.Dimensions.VolumeCM3()
	weight := req.PartWeightKG
	if !weight.IsPositive() {
		density := tables.Materials[req.Part.Material].Density
		if !density.IsPositive() {
			return model.Quote{}, model.NewValidationError("part_weight_kg", "is required when the material density is unknown")
		}
		weight = volume.Mul(density).Div(gramsPerKG)
	}

	pricingReq, err := model.NewPricingRequest(estimate.Breakdown, req.Part.ComplexityScore, weight, volume, req.Quantity, req.CustomerTier, req.ShippingZone)
	if err != nil {
		return model.Quote{}, err
	}

	pricing, err := s.tiers.CalculateTierPricing(ctx, pricingReq, tables.Tiers, tables.Shipping)
	if err != nil {
		return model.Quote{}, err
	}

	var results []model.TierLimitResult
	if strict {
		for _, tier := range model.AllTiers {
			price, _ := pricing.Get(tier)
			if err := s.validate(price, pricingReq, limits); err != nil {
				return model.Quote{}, err
			}
		}
	} else {
		pricing, results = s.enforcer.ApplyLimitsToTiers(pricing, pricingReq, limits)
		for _, r := range results {
			for _, v := range r.Violations {
				metrics.RecordLimitViolation(string(r.Tier), string(v.Type), "corrective")
			}
		}
	}

	return model.Quote{
		Part:          req.Part,
		Quantity:      req.Quantity,
		CustomerTier:  req.CustomerTier,
		ShippingZone:  req.ShippingZone,
		PartWeightKG:  weight,
		PartVolumeCM3: volume,
		CostBreakdown: estimate.Breakdown,
		CostRange:     estimate.Range,
		Pricing:       pricing,
		Limits:        results,
		Strict:        strict,
		TableVersion:  tables.Version,
	}, nil
}

func (s *QuoteServiceImpl) Get(ctx context.Context, id string) (model.Quote, error) {
	if s.quotes == nil {
		return model.Quote{}, ErrRepositoryNotConfigured
	}
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return model.Quote{}, err
	}
	return *quote, nil
}

func (s *QuoteServiceImpl) Cost(ctx context.Context, spec model.PartSpecification) (CostEstimate, error) {
	if err := validatePart(spec); err != nil {
		return CostEstimate{}, err
	}
	tables, err := s.tables.Active(ctx)
	if err != nil {
		return CostEstimate{}, err
	}
	return s.estimate(spec, tables)
}

func (s *QuoteServiceImpl) estimate(spec model.PartSpecification, tables model.PricingTables) (CostEstimate, error) {
	material, process := string(spec.Material), string(spec.Process)

	breakdown, err := s.costs.CalculateCost(spec, tables.Materials, tables.Processes)
	if err != nil {
		metrics.RecordCostCalculation(material, process, "unsupported")
		return CostEstimate{}, err
	}
	costRange, err := s.costs.EstimateCostRange(spec, tables.Materials, tables.Processes)
	if err != nil {
		metrics.RecordCostCalculation(material, process, "error")
		return CostEstimate{}, err
	}

	metrics.RecordCostCalculation(material, process, "success")
	return CostEstimate{Breakdown: breakdown, Range: costRange, TableVersion: tables.Version}, nil
}

func (s *QuoteServiceImpl) ApplyLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) model.LimitResult {
	result := s.enforcer.ApplyLimits(breakdown, req, s.limitsFor(limits))
	for _, v := range result.Violations {
		metrics.RecordLimitViolation(string(breakdown.Tier), string(v.Type), "corrective")
	}
	return result
}

func (s *QuoteServiceImpl) ValidateLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) error {
	return s.validate(breakdown, req, s.limitsFor(limits))
}

func (s *QuoteServiceImpl) validate(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) error {
	err := s.enforcer.ValidateLimitsStrict(breakdown, req, limits)
	var limitErr model.LimitError
	if errors.As(err, &limitErr) {
		metrics.RecordLimitViolation(string(limitErr.TierName()), string(limitErr.ViolationType()), "strict")
	}
	return err
}

func (s *QuoteServiceImpl) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Close stops the cache janitor.
func (s *QuoteServiceImpl) Close() {
	if s.cache != nil {
		s.cache.Stop()
	}
}

func (s *QuoteServiceImpl) limitsFor(override *model.PricingLimits) *model.PricingLimits {
	if override != nil {
		return override
	}
	return s.limits
}

func validatePart(spec model.PartSpecification) error {
	if _, err := model.NewPartDimensions(spec.Dimensions.LengthMM, spec.Dimensions.WidthMM, spec.Dimensions.HeightMM); err != nil {
		return err
	}
	_, err := model.NewPartSpecification(spec.Dimensions, spec.ComplexityScore, spec.Material, spec.Process)
	return err
}

func validateQuoteRequest(req QuoteRequest) error {
	if err := validatePart(req.Part); err != nil {
		return err
	}
	if req.Quantity <= 0 {
		return model.NewValidationError("quantity", "must be greater than 0")
	}
	if !req.ShippingZone.Valid() {
		return model.NewValidationError("shipping_zone", "must be between 1 and 4")
	}
	switch req.CustomerTier {
	case "", model.CustomerTierStandard, model.CustomerTierPremium:
	default:
		return model.NewValidationError("customer_tier", "must be standard or premium")
	}
	if req.PartWeightKG.IsNegative() {
		return model.NewValidationError("part_weight_kg", "must be >= 0")
	}
	return req.Limits.Validate()
}

// fingerprint identifies a quote request for memoization. Two requests with the
// same fingerprint price identically against the same tables version.
func fingerprint(req QuoteRequest, limits *model.PricingLimits, strict bool, version int) string {
	var b strings.Builder
	field := func(s string) {
		b.WriteString(s)
		b.WriteByte('|')
	}
	num := func(d decimal.Decimal) {
		field(d.String())
	}
	optional := func(d *decimal.Decimal) {
		if d == nil {
			field("-")
			return
		}
		num(*d)
	}

	field(strconv.Itoa(version))
	field(string(req.Part.Material))
	field(string(req.Part.Process))
	num(req.Part.Dimensions.LengthMM)
	num(req.Part.Dimensions.WidthMM)
	num(req.Part.Dimensions.HeightMM)
	num(req.Part.ComplexityScore)
	field(strconv.Itoa(req.Quantity))
	field(string(req.CustomerTier))
	field(strconv.Itoa(int(req.ShippingZone)))
	num(req.PartWeightKG)
	field(strconv.FormatBool(strict))
	if limits == nil {
		limits = &model.PricingLimits{}
	}
	optional(limits.MinimumPricePerUnit)
	optional(limits.MinimumTotalPrice)
	optional(limits.MinimumMarginPercentage)
	optional(limits.MinimumMarginAmount)
	optional(limits.MaximumDiscountPercentage)
	optional(limits.MinimumPriceMultiplier)
	return b.String()
}
