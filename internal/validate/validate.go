// SPDX-License-Identifier: MIT

// Package validate provides the accumulating validator used for configuration
// documents. Violations are collected, never short-circuited, so a caller sees
// every problem in one pass.
package validate

import (
	"fmt"
	"math"
	"strings"
)

// Rule names classify a violation.
const (
	RuleType        = "type"
	RuleBounds      = "bounds"
	RuleRequired    = "required"
	RuleUnknown     = "unknown_field"
	RuleReference   = "reference"
	RuleConsistency = "consistency"
	RuleCustom      = "custom"
)

// Error represents a validation error
type Error struct {
	Field   string      // Dotted path of the field that failed validation
	Rule    string      // Rule that was violated
	Value   interface{} // The invalid value
	Message string      // Human-readable error message
	Line    int         // Source line, 0 if unknown
}

// Error implements the error interface
func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("validation failed for %s (line %d): %s", e.Field, e.Line, e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors and can produce a ValidationError when invalid.
type Validator struct {
	errors []Error
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value interface{}) {
	v.Add(Error{
		Field:   field,
		Rule:    RuleCustom,
		Value:   value,
		Message: message,
	})
}

// Add records a fully populated violation.
func (v *Validator) Add(e Error) {
	if e.Rule == "" {
		e.Rule = RuleCustom
	}
	v.errors = append(v.errors, e)
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}

	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)

	return ValidationError{errors: copied}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}

	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// InBounds validates that a number is finite and lies within b.
func (v *Validator) InBounds(field string, value float64, b Bound, line int) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		v.Add(Error{Field: field, Rule: RuleBounds, Value: value, Line: line,
			Message: "value must be a finite number"})
		return
	}
	if !b.Contains(value) {
		v.Add(Error{Field: field, Rule: RuleBounds, Value: value, Line: line,
			Message: fmt.Sprintf("value must be %s, got %g", b, value)})
	}
}

// Require records a missing required field.
func (v *Validator) Require(field string, present bool, line int) {
	if !present {
		v.Add(Error{Field: field, Rule: RuleRequired, Line: line, Message: "required field is missing"})
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field,
		fmt.Sprintf("value must be one of %v, got %q", allowed, value),
		value)
}
