package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// RegisterValidators teaches v the quote API's binding tags:
//
//	tier           one of the four service tiers
//	customer_tier  standard or premium
//	shipping_zone  an integer zone from 1 to 4
//
// It also maps decimal.Decimal to float64 so the numeric tags (gt, gte, lte)
// apply to decimal fields, and reports fields by their JSON names.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterTagNameFunc(jsonFieldName)

	validators := map[string]validator.Func{
		"tier": func(fl validator.FieldLevel) bool {
			return model.Tier(fl.Field().String()).Valid()
		},
		"customer_tier": func(fl validator.FieldLevel) bool {
			switch model.CustomerTier(fl.Field().String()) {
			case model.CustomerTierStandard, model.CustomerTierPremium:
				return true
			default:
				return false
			}
		},
		"shipping_zone": func(fl validator.FieldLevel) bool {
			return model.ShippingZone(fl.Field().Int()).Valid()
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// fieldMessage explains a failed tag in words a client can act on.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "tier":
		return "must be expedited, standard, economy or domestic_economy"
	case "customer_tier":
		return "must be standard or premium"
	case "shipping_zone":
		return "must be between 1 and 4"
	default:
		return "is invalid"
	}
}

// ValidationDetails turns a binding or domain validation error into a
// field to message map for ErrorResponse.Details. It returns nil for other errors.
func ValidationDetails(err error) map[string]string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fieldPath(fe.Namespace())] = fieldMessage(fe)
		}
		return details
	}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return map[string]string{validationErr.Field: validationErr.Message}
	}
	return nil
}

// fieldPath drops the root struct name: "QuoteRequest.part.material" becomes "part.material".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// LimitErrorDetails describes a strict-mode rejection for ErrorResponse.Details.
func LimitErrorDetails(err model.LimitError) map[string]string {
	return map[string]string{
		"tier":      string(err.TierName()),
		"violation": string(err.ViolationType()),
		"current":   err.Current().StringFixed(4),
		"limit":     err.Limit().StringFixed(4),
	}
}
