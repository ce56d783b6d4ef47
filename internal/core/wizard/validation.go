package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aimatch/portal/internal/core/domain"
)

var (
	creditCodeRe = regexp.MustCompile(`^[0-9A-Z]{18}$`)
	cnMobileRe   = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// NewValidator returns a validator that reports fields by their JSON name and
// knows the marketplace-specific tags used on draft sections.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "credit_code", func(fl validator.FieldLevel) bool {
		return creditCodeRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "cn_mobile", func(fl validator.FieldLevel) bool {
		return cnMobileRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "company_size", func(fl validator.FieldLevel) bool {
		return domain.HasOption(domain.CompanySizes, fl.Field().String())
	})
	mustRegister(v, "ai_capability", func(fl validator.FieldLevel) bool {
		return domain.HasOption(domain.AICapabilities, fl.Field().String())
	})
	mustRegister(v, "industry", func(fl validator.FieldLevel) bool {
		return domain.HasOption(domain.Industries, fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("wizard: register %q: %v", tag, err))
	}
}

// ValidateStruct validates a draft section or request body and converts
// failures into a *domain.ValidationError keyed by JSON field path.
func ValidateStruct(v *validator.Validate, section any) error {
	err := v.Struct(section)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		path := fieldPath(fe)
		if _, seen := fields[path]; !seen {
			fields[path] = FieldMessage(fe)
		}
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath drops the section type from the validator namespace:
// "SupplyCapabilities.capability_details[1].tech_stack" → "capability_details[1].tech_stack".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}

// FieldMessage converts a single validator error into a readable message.
func FieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "numeric":
		return field + " must be numeric"
	case "credit_code":
		return field + " must be an 18-character unified social credit code"
	case "cn_mobile":
		return field + " must be a valid 11-digit mobile number"
	case "company_size":
		return field + " must be one of: small, medium, large"
	case "ai_capability":
		return field + " is not a known AI capability"
	case "industry":
		return field + " is not a known industry"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
