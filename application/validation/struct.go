package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/facet/domain/entities"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "capid", isCapabilityID)
	mustRegister(v, "moduleid", isModuleID)
	mustRegister(v, "moduleref", isModuleRef)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func isCapabilityID(fl validator.FieldLevel) bool {
	id, err := entities.ParseCapabilityID(fl.Field().String())
	return err == nil && !id.IsZero()
}

func isModuleID(fl validator.FieldLevel) bool {
	return entities.ModuleID(fl.Field().String()).Validate() == nil
}

// isModuleRef accepts a module id or the wildcard. The null module is never
// a valid filter entry.
func isModuleRef(fl validator.FieldLevel) bool {
	ref, err := entities.ParseModuleRef(fl.Field().String())
	return err == nil && !ref.IsNull()
}

// ValidateStruct runs the struct tag validations on v.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	return nil
}

func structErrors(m *entities.Manifest) []entities.ValidationError {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []entities.ValidationError{{Message: err.Error()}}
	}

	out := make([]entities.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, entities.ValidationError{
			Field:   trimRoot(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return out
}

// trimRoot drops the leading struct name: "Manifest.modules[0].id" becomes
// "modules[0].id".
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is not set", strings.ToLower(fe.Param()))
	case "capid":
		return fmt.Sprintf("%q is not a capability id (want 0x + 8 hex digits, not all zero)", fe.Value())
	case "moduleid":
		return fmt.Sprintf("%q is not a valid module id", fe.Value())
	case "moduleref":
		return fmt.Sprintf("%q is not a module id or %q", fe.Value(), entities.WildcardModule.String())
	case "semver":
		return fmt.Sprintf("%q is not a semantic version", fe.Value())
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
