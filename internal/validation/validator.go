// Package validation validates decoded request bodies with go-playground/validator
// and reports failures per JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookstore/internal/entities"
)

// Error is a failed validation. Fields maps JSON field names to messages.
type Error struct {
	Fields map[string]string
}

func NewError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError is returned by custom JSON decoders that know which field they decode.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validator wraps go-playground/validator with field-keyed error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the catalog's custom tags registered:
// notblank (non-whitespace string), price and rate.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "price", func(fl validator.FieldLevel) bool {
		p := fl.Field().Int()
		return p >= 0 && p <= maxPrice
	})
	mustRegister(v, "rate", func(fl validator.FieldLevel) bool {
		return entities.Rate(fl.Field().Uint()).Valid()
	})

	return &Validator{v: v}
}

// maxPrice is 99999.99 in minor units.
const maxPrice = 9999999

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate validates a struct and returns an *Error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		if _, ok := fields[e.Field()]; !ok {
			fields[e.Field()] = friendlyMessage(e)
		}
	}
	return &Error{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "notblank":
		return "this field may not be blank"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", e.Param())
		}
		return "must be less than or equal to " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", e.Param())
		}
		return "must be greater than or equal to " + e.Param()
	case "price":
		if p, ok := e.Value().(entities.Price); ok && p < 0 {
			return "ensure this value is greater than or equal to 0"
		}
		return entities.ErrPriceTooManyDigits.Error()
	case "rate":
		return fmt.Sprintf("%v is not a valid choice", e.Value())
	default:
		return "is invalid"
	}
}

var defaultValidator = New()

// Validate runs s through the shared validator.
func Validate(s any) error {
	return defaultValidator.Validate(s)
}
