// Package validate rejects structurally invalid cost inputs before they
// reach the landed-cost engine, which itself never fails.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/store"
)

// ValidationRule registers one custom tag on the underlying validator.
type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator wraps go-playground/validator with the cost-input rules.
type Validator struct {
	validator *validator.Validate
}

// FieldErrors maps a json field path to a human readable problem.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	for _, r := range CostRules() {
		r.Rule(v)
	}
	return &Validator{validator: v}
}

// registerFn panics when the tag cannot be registered, which only happens
// for a malformed rule table.
func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %q validation: %v", tag, err))
		}
	}
}

// CostRules returns the custom tags understood by cost inputs.
func CostRules() []ValidationRule {
	return []ValidationRule{
		{Rule: registerFn("container_type", containerTypeValidator)},
		{Rule: registerFn("destination", destinationValidator)},
		{Rule: registerFn("scenario", scenarioValidator)},
		{Rule: registerFn("timestamp", timestampValidator)},
	}
}

func containerTypeValidator(fl validator.FieldLevel) bool {
	return landed.ContainerType(fl.Field().String()).Known()
}

func destinationValidator(fl validator.FieldLevel) bool {
	return landed.Destination(fl.Field().String()).Known()
}

func scenarioValidator(fl validator.FieldLevel) bool {
	_, ok := landed.Preset(landed.Scenario(fl.Field().String()))
	return ok
}

// timestampValidator accepts the layouts understood by store.ParseTimestamp.
func timestampValidator(fl validator.FieldLevel) bool {
	_, err := store.ParseTimestamp(fl.Field().String())
	return err == nil
}

// Struct validates s and converts failures into FieldErrors.
func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "container_type":
		return fmt.Sprintf("must be one of %v", landed.ContainerTypes())
	case "destination":
		return fmt.Sprintf("must be one of %v", landed.Destinations())
	case "scenario":
		return fmt.Sprintf("must be one of %v", landed.Scenarios())
	case "timestamp":
		return "must be a date (2006-01-02), a datetime (2006-01-02 15:04:05) or RFC3339"
	default:
		return "failed " + fe.Tag()
	}
}
