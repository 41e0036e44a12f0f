package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const PhoneTag = "natphone"

// Register adds the custom tags used on registration payloads.
func Register(v *validator.Validate) error {
	return v.RegisterValidation(PhoneTag, func(fl validator.FieldLevel) bool {
		return IsValidPhoneNumber(fl.Field().String())
	})
}

// New returns a validator with the custom tags already registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// registration of a static func cannot fail
	_ = Register(v)

	return v
}
