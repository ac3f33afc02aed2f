// Package errors holds the error definitions shared by every chunkit package.
//
// This file provides:
// - Sentinel errors for each failure class of a run
// - Error category checking functions
// - ExitCode mapping for the command line
// - Error wrapping utilities
// - A ValidationErrors collector for configuration checks
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Process exit codes - returned by cmd/chunkit
// ============================================================================

const (
	CodeOK       = 0
	CodeUnknown  = 1
	CodeConfig   = 2
	CodeIO       = 3
	CodeParse    = 4
	CodeWorker   = 5
	CodeWrite    = 6
	CodeVerify   = 7
	CodeInternal = 8
)

// CodeName returns a human-readable name for an exit code.
func CodeName(code int) string {
	switch code {
	case CodeOK:
		return "OK"
	case CodeUnknown:
		return "Unknown"
	case CodeConfig:
		return "Config"
	case CodeIO:
		return "IO"
	case CodeParse:
		return "Parse"
	case CodeWorker:
		return "Worker"
	case CodeWrite:
		return "Write"
	case CodeVerify:
		return "Verify"
	case CodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Code(%d)", code)
	}
}

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Input errors
	ErrOpen = errors.New("open input")
	ErrMap  = errors.New("map input")

	// Engine errors
	ErrParse        = errors.New("parse record")
	ErrWorker       = errors.New("worker failed")
	ErrInvalidChunk = errors.New("invalid chunk layout")

	// Output errors
	ErrWrite  = errors.New("write output")
	ErrVerify = errors.New("verification mismatch")

	// Validation errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingField  = errors.New("missing required field")

	// Internal errors
	ErrInternal = errors.New("internal error")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// New is a convenience wrapper for errors.New
var New = errors.New

// IsIO returns true if err happened while making the input addressable.
func IsIO(err error) bool {
	return errors.Is(err, ErrOpen) ||
		errors.Is(err, ErrMap)
}

// IsValidation returns true if err is a configuration error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField)
}

// IsFatal returns true for every error class that aborts a run.
// There are no recoverable classes; the function exists so callers can
// tell engine failures apart from foreign errors such as context cancellation.
func IsFatal(err error) bool {
	return IsIO(err) ||
		IsValidation(err) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrWorker) ||
		errors.Is(err, ErrInvalidChunk) ||
		errors.Is(err, ErrWrite) ||
		errors.Is(err, ErrVerify) ||
		errors.Is(err, ErrInternal)
}

// ============================================================================
// Error to exit code mapping
// ============================================================================

// ExitCode maps an error to the process exit code.
// Parse errors win over worker errors because a failed task wraps the parse
// error that killed it.
func ExitCode(err error) int {
	if err == nil {
		return CodeOK
	}

	switch {
	case IsValidation(err):
		return CodeConfig
	case IsIO(err):
		return CodeIO
	case Is(err, ErrParse):
		return CodeParse
	case Is(err, ErrWorker):
		return CodeWorker
	case Is(err, ErrWrite):
		return CodeWrite
	case Is(err, ErrVerify):
		return CodeVerify
	case Is(err, ErrInvalidChunk), Is(err, ErrInternal):
		return CodeInternal
	default:
		return CodeUnknown
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewParse creates a parse error for the record text found at offset.
func NewParse(offset int, text []byte, reason string) error {
	const maxText = 64
	if len(text) > maxText {
		text = text[:maxText]
	}
	return fmt.Errorf("offset %d: %q: %s: %w", offset, text, reason, ErrParse)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
