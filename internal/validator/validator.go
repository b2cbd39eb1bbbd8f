package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// Validator wraps go-playground validator
type Validator struct {
	validate *validator.Validate
}

// New creates a new validator
func New() *Validator {
	v := validator.New()

	// Report json field names instead of Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct. A failing struct yields a *domain.ValidationError
// for the first offending field.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// ValidateComment trims and validates a comment, returning the trimmed value
func (v *Validator) ValidateComment(c domain.Comment) (domain.Comment, error) {
	c = c.Normalize()
	if err := v.Validate(&c); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// formatValidationError converts validator errors into a domain validation error
func (v *Validator) formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return domain.NewValidationError(e.Field(), v.formatFieldError(e))
	}
	return domain.NewValidationError("", err.Error())
}

// formatFieldError formats a single field error
func (v *Validator) formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "failed validation for " + e.Tag()
	}
}
