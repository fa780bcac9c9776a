package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedMaterial is wrapped by UnsupportedMaterialError.
	ErrUnsupportedMaterial = errors.New("unsupported material")
	// ErrUnsupportedProcess is wrapped by UnsupportedProcessError.
	ErrUnsupportedProcess = errors.New("unsupported process")
	// ErrPriceLimit is wrapped by every strict-mode limit error.
	ErrPriceLimit = errors.New("price limit violated")
)

// ValidationError reports an invalid field value.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UnsupportedMaterialError is returned when a material is missing from the cost table.
type UnsupportedMaterialError struct {
	Material MaterialType
}

func (e *UnsupportedMaterialError) Error() string {
	return fmt.Sprintf("unsupported material: %q", e.Material)
}

// Unwrap returns ErrUnsupportedMaterial.
func (e *UnsupportedMaterialError) Unwrap() error {
	return ErrUnsupportedMaterial
}

// UnsupportedProcessError is returned when a process is missing from the cost table.
type UnsupportedProcessError struct {
	Process ProcessType
}

func (e *UnsupportedProcessError) Error() string {
	return fmt.Sprintf("unsupported process: %q", e.Process)
}

// Unwrap returns ErrUnsupportedProcess.
func (e *UnsupportedProcessError) Unwrap() error {
	return ErrUnsupportedProcess
}

// LimitError is implemented by every strict-mode rejection.
type LimitError interface {
	error
	ViolationType() ViolationType
	TierName() Tier
	Current() decimal.Decimal
	Limit() decimal.Decimal
}

// NegativePriceError rejects a final price at or below zero.
type NegativePriceError struct {
	Tier       Tier
	FinalPrice decimal.Decimal
}

func (e *NegativePriceError) Error() string {
	return fmt.Sprintf("tier %s: final price %s is not positive", e.Tier, e.FinalPrice.StringFixed(2))
}

func (e *NegativePriceError) Unwrap() error                { return ErrPriceLimit }
func (e *NegativePriceError) ViolationType() ViolationType { return ViolationNegativePrice }
func (e *NegativePriceError) TierName() Tier               { return e.Tier }
func (e *NegativePriceError) Current() decimal.Decimal     { return e.FinalPrice }
func (e *NegativePriceError) Limit() decimal.Decimal       { return decimal.Zero }

// MinimumPriceVariant distinguishes the three price floors.
type MinimumPriceVariant string

// Price floor variants.
const (
	VariantPerUnit MinimumPriceVariant = "per-unit"
	VariantTotal   MinimumPriceVariant = "total"
	VariantNxCost  MinimumPriceVariant = "Nx-cost"
)

// BelowMinimumPriceError rejects a price under a configured floor.
type BelowMinimumPriceError struct {
	Tier     Tier
	Variant  MinimumPriceVariant
	Price    decimal.Decimal
	Required decimal.Decimal
}

func (e *BelowMinimumPriceError) Error() string {
	return fmt.Sprintf("tier %s: %s price %s is below minimum %s",
		e.Tier, e.Variant, e.Price.StringFixed(2), e.Required.StringFixed(2))
}

func (e *BelowMinimumPriceError) Unwrap() error { return ErrPriceLimit }

func (e *BelowMinimumPriceError) ViolationType() ViolationType {
	switch e.Variant {
	case VariantPerUnit:
		return ViolationMinimumPricePerUnit
	case VariantTotal:
		return ViolationMinimumTotalPrice
	default:
		return ViolationCostBasis
	}
}

func (e *BelowMinimumPriceError) TierName() Tier           { return e.Tier }
func (e *BelowMinimumPriceError) Current() decimal.Decimal { return e.Price }
func (e *BelowMinimumPriceError) Limit() decimal.Decimal   { return e.Required }

// InsufficientMarginError rejects a margin under the configured floor.
// Percentage is true when the floor is a fraction of base cost.
type InsufficientMarginError struct {
	Tier       Tier
	Margin     decimal.Decimal
	Required   decimal.Decimal
	Percentage bool
}

func (e *InsufficientMarginError) Error() string {
	if e.Percentage {
		return fmt.Sprintf("tier %s: margin %s%% is below minimum %s%%",
			e.Tier, e.Margin.Mul(decimal.NewFromInt(100)).StringFixed(2), e.Required.Mul(decimal.NewFromInt(100)).StringFixed(2))
	}
	return fmt.Sprintf("tier %s: margin %s is below minimum %s", e.Tier, e.Margin.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientMarginError) Unwrap() error { return ErrPriceLimit }

func (e *InsufficientMarginError) ViolationType() ViolationType {
	if e.Percentage {
		return ViolationMinimumMargin
	}
	return ViolationMinimumMarginAmount
}

func (e *InsufficientMarginError) TierName() Tier           { return e.Tier }
func (e *InsufficientMarginError) Current() decimal.Decimal { return e.Margin }
func (e *InsufficientMarginError) Limit() decimal.Decimal   { return e.Required }

// ExcessiveDiscountError rejects total discounts above the configured cap.
type ExcessiveDiscountError struct {
	Tier               Tier
	DiscountPercentage decimal.Decimal
	Maximum            decimal.Decimal
}

func (e *ExcessiveDiscountError) Error() string {
	return fmt.Sprintf("tier %s: total discount %s%% exceeds maximum %s%%",
		e.Tier, e.DiscountPercentage.Mul(decimal.NewFromInt(100)).StringFixed(2), e.Maximum.Mul(decimal.NewFromInt(100)).StringFixed(2))
}

func (e *ExcessiveDiscountError) Unwrap() error                { return ErrPriceLimit }
func (e *ExcessiveDiscountError) ViolationType() ViolationType { return ViolationMaximumDiscount }
func (e *ExcessiveDiscountError) TierName() Tier               { return e.Tier }
func (e *ExcessiveDiscountError) Current() decimal.Decimal     { return e.DiscountPercentage }
func (e *ExcessiveDiscountError) Limit() decimal.Decimal       { return e.Maximum }
