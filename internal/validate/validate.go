// Package validate checks form structs with go-playground/validator and
// converts failures into a domain.ValidationError keyed by form field name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DukeRupert/boxoffice/internal/domain"
)

// Validator wraps a configured *validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their `form` tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	// Registration cannot fail on a validator this package defines itself.
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &Validator{v: v}
}

// maxBytes checks a string's length in bytes. The built-in max counts runes,
// which lets multibyte input past bcrypt's byte limit.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s. It returns nil, a *domain.ValidationError carrying the
// first failure per field, or an internal error when s is not a struct.
func (val *Validator) Struct(op string, s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Internal(err, op, "validation failed")
	}

	ve := &domain.ValidationError{Op: op}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), Message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return ve
}

// fieldMessages overrides the generic wording for specific field/tag pairs.
var fieldMessages = map[string]map[string]string{
	"email": {
		"required": "Please enter a valid email address",
		"email":    "Please enter a valid email address",
	},
	"password": {
		"required": "Password is required",
	},
	"name": {
		"required": "Name must be at least 2 characters long",
	},
}

var titler = cases.Title(language.English)

// Message renders a user-facing message for a failed rule on field.
func Message(field, tag, param string) string {
	if byTag, ok := fieldMessages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}

	label := titler.String(strings.ReplaceAll(field, "_", " "))
	switch tag {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", label, param)
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes long", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, param)
	default:
		return label + " is invalid"
	}
}
