// Package validation checks form input before it is sent. The API stays
// authoritative; these rules only catch obvious mistakes early. Failures
// are reported as message keys for the front end to translate.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	pnrPattern        = regexp.MustCompile(`^(19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])-\d{4}$`)
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,}$`)
	passwordPattern   = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()\-_=+.,;:?]{6,}$`)
	personNamePattern = regexp.MustCompile(`^[\p{L} -]+$`)
)

var messageKeys = map[string]string{
	"required":           "validation.required",
	"email":              "validation.email-format",
	"pnr":                "validation.pnr-format",
	"username":           "validation.username-format",
	"password":           "validation.password-format",
	"personname":         "validation.name-format",
	"datetime":           "validation.date-format",
	"availability_after": "validation.availability-order",
	"min":                "validation.too-few",
	"gt":                 "validation.out-of-range",
	"gte":                "validation.out-of-range",
	"lte":                "validation.out-of-range",
}

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	mustRegister(v, "pnr", matches(pnrPattern))
	mustRegister(v, "username", matches(usernamePattern))
	mustRegister(v, "password", matches(passwordPattern))
	mustRegister(v, "personname", matches(personNamePattern))
	mustRegister(v, "availability_after", availabilityAfter)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// availabilityAfter holds when the field's date is not before the sibling
// field named by the tag parameter.
func availabilityAfter(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	from := parent.FieldByName(fl.Param())
	if !from.IsValid() || from.Kind() != reflect.String {
		return false
	}

	fromDate, errFrom := time.Parse(dateLayout, from.String())
	toDate, errTo := time.Parse(dateLayout, fl.Field().String())
	if errFrom != nil || errTo != nil {
		// the datetime rule reports the format problem
		return true
	}
	return !toDate.Before(fromDate)
}

type FieldError struct {
	// Field is the JSON path of the field, e.g. "availabilities[0].toDate".
	Field string
	Key   string
}

type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fieldErr := range e {
		parts[i] = fieldErr.Field + ": " + fieldErr.Key
	}
	return strings.Join(parts, "; ")
}

// Keys maps each failing field to its message key.
func (e Errors) Keys() map[string]string {
	keys := make(map[string]string, len(e))
	for _, fieldErr := range e {
		keys[fieldErr.Field] = fieldErr.Key
	}
	return keys
}

// Struct validates v and returns Errors when a rule fails.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	result := make(Errors, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		key, ok := messageKeys[fieldErr.Tag()]
		if !ok {
			key = "validation.invalid"
		}
		result = append(result, FieldError{Field: fieldPath(fieldErr.Namespace()), Key: key})
	}
	return result
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
