package validation

import (
	"fmt"
	"strings"
)

// ErrorCode constants for machine-readable error identification
const (
	ErrCodeRequired    = "required"
	ErrCodeType        = "type"
	ErrCodeSchema      = "schema"
	ErrCodeInvalidJSON = "invalid_json"
	ErrCodeNoRoute     = "no_route"
	ErrCodeParameter   = "parameter"
	ErrCodeContract    = "contract_validation"
)

// ErrorLocation constants
const (
	LocationBody     = "body"
	LocationPath     = "path"
	LocationQuery    = "query"
	LocationHeader   = "header"
	LocationDocument = "document"
)

// FieldError represents a detailed validation error for a single field.
type FieldError struct {
	// Field is the name of the field that failed validation
	Field string `json:"field"`

	// Location indicates where the field is: body, path, query, header, document
	Location string `json:"location"`

	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Location, e.Field, e.Message)
	}
	if e.Location != "" {
		return fmt.Sprintf("%s: %s", e.Location, e.Message)
	}
	return e.Message
}

// Result contains the outcome of validation.
type Result struct {
	// Valid is true if validation passed
	Valid bool `json:"valid"`

	// Errors contains validation errors (when Valid is false)
	Errors []*FieldError `json:"errors,omitempty"`
}

// Valid returns an empty passing result.
func Valid() *Result {
	return &Result{Valid: true}
}

// AddError adds a validation error to the result
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// HasErrors returns true if there are any validation errors
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Merge combines another result into this one
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// Err returns the result as a single error, or nil when valid.
func (r *Result) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	if len(msgs) == 0 {
		return fmt.Errorf("validation failed")
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// NewRequiredError creates an error for a missing required field
func NewRequiredError(field, location string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeRequired,
		Message:  fmt.Sprintf("field '%s' is required", field),
	}
}

// NewSchemaError creates an error for JSON Schema validation failure
func NewSchemaError(field, location, message string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeSchema,
		Message:  message,
	}
}
