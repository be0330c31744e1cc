// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	personNameRegex    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	passwordCharsRegex = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
)

const passwordSpecials = "@$!%*?&"

// ValidationError represents a single field validation error.
type ValidationError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the JSON name of the field that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "150" for "max=150").
func (e *ValidationError) Param() string {
	return e.param
}

// Error returns the "field : message" form.
func (e *ValidationError) Error() string {
	return e.field + " : " + e.message
}

// RequestValidationError represents a collection of validation errors.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Messages returns one "field : message" entry per failed field.
func (ve *RequestValidationError) Messages() []string {
	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].Error()
	}
	return messages
}

// Error implements the error interface, returning a combined error message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	return strings.Join(ve.Messages(), "; ")
}

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom validators and options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("personname", validatePersonName)
		_ = validate.RegisterValidation("strongpassword", validateStrongPassword)
	})

	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *RequestValidationError if validation fails.
//
// Example:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondValidationError(w, verr)
//	    return
//	}
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "body", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// NewFieldError builds a single-field validation error for checks done
// outside struct tags, such as an undecodable body.
func NewFieldError(field, message string) *RequestValidationError {
	return &RequestValidationError{
		errors: []ValidationError{{field: field, tag: "custom", message: message}},
	}
}

func validatePersonName(fl validator.FieldLevel) bool {
	return personNameRegex.MatchString(fl.Field().String())
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if !passwordCharsRegex.MatchString(password) {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

const passwordMessage = "Password must be at least 8 characters, with 1 uppercase, 1 lowercase, 1 number, and 1 special character"

// fieldMessages holds messages for specific field and tag pairs.
var fieldMessages = map[string]string{
	"name.required":           "Name must contain only alphabets and spaces",
	"name.personname":         "Name must contain only alphabets and spaces",
	"email.required":          "Invalid email format",
	"email.email":             "Invalid email format",
	"password.required":       "Password is required",
	"password.strongpassword": passwordMessage,
	"role.required":           "Role must be either author or reader",
	"role.oneof":              "Role must be either author or reader",
	"title.min":               "Title is required",
	"title.max":               "Title cannot exceed 150 characters",
	"content.min":             "Content must be at least 50 characters",
	"category.required":       "Category is required",
	"status.oneof":            "Status must be either Draft or Published",
	"page.number":             "Page must be a positive whole number",
	"size.number":             "Size must be a positive whole number",
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"number":   "%s must contain only digits",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
