// Package contact validates and submits the contact form.
package contact

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgRequired     = "Please fill all required fields"
	msgInvalidEmail = "Please enter a valid email address"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.ToLower(fl.Field().String()))
	})
	return v
}

// Form holds the required contact fields. Other posted fields travel untouched.
type Form struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,simpleemail"`
	Message string `validate:"required"`
}

// FormFromValues reads the required fields from a posted form.
func FormFromValues(values url.Values) Form {
	return Form{
		Name:    values.Get("name"),
		Email:   values.Get("email"),
		Message: values.Get("message"),
	}
}

// ValidationError blocks a submission before any request is made.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return "contact: " + e.Message
}

// Validate reports missing fields before a malformed email.
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var required, malformed []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			required = append(required, strings.ToLower(fe.Field()))
		} else {
			malformed = append(malformed, strings.ToLower(fe.Field()))
		}
	}
	if len(required) > 0 {
		return &ValidationError{Fields: required, Message: msgRequired}
	}
	return &ValidationError{Fields: malformed, Message: msgInvalidEmail}
}
