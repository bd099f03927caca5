// Package errors provides structured error handling for configuration resolution.
//
// Overview:
//   - Responsibility: Define resolution error codes and a structured error type
//   - Key Types: Code type for error classification, E struct for per-entry errors
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library error wrapping
//   - Performance Notes: Minimal allocations, errors are constructed on failure paths only
//
// Usage:
//
//	err := errors.New(errors.CodeRequiredNotPresent, "port", "HTTP_PORT", "required and not set")
//	code := errors.CodeOf(err)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a resolution error classification code.
type Code string

// Error codes for the three failure classes of configuration resolution.
const (
	// CodeDeclaration marks an invalid entry declaration, e.g. a required
	// entry that also carries a default, or a duplicate entry name.
	CodeDeclaration Code = "DECLARATION"

	// CodeRequiredNotPresent marks a required entry whose variable is absent
	// from every layered source.
	CodeRequiredNotPresent Code = "REQUIRED_NOT_PRESENT"

	// CodeInvalidValue marks a raw value that failed coercion,
	// deserialization, or shape conformance.
	CodeInvalidValue Code = "INVALID_VALUE"
)

// E represents a structured resolution error bound to one configuration entry.
type E struct {
	Code Code   // Error classification code
	Name string // Entry name the error belongs to
	Var  string // Source variable name the entry reads from
	Msg  string // Human-readable detail
	Err  error  // Underlying error (may be nil)
}

// Error implements the error interface.
func (e *E) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s (%s): %s: %v", e.Code, e.Name, e.Var, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Code, e.Name, e.Var, e.Err)
	default:
		return fmt.Sprintf("%s: %s (%s): %s", e.Code, e.Name, e.Var, e.Msg)
	}
}

// Unwrap returns the underlying error for error unwrapping.
func (e *E) Unwrap() error {
	return e.Err
}

// New creates a new structured error for an entry.
func New(code Code, name, varName, msg string) error {
	return &E{
		Code: code,
		Name: name,
		Var:  varName,
		Msg:  msg,
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code Code, name, varName, format string, args ...any) error {
	return &E{
		Code: code,
		Name: name,
		Var:  varName,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new structured error wrapping an underlying cause.
func Wrap(code Code, name, varName, msg string, err error) error {
	return &E{
		Code: code,
		Name: name,
		Var:  varName,
		Msg:  msg,
		Err:  err,
	}
}

// CodeOf extracts the error code from an error.
// Returns empty string if the error doesn't carry a code.
func CodeOf(err error) Code {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode checks whether an error carries a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// As is a type assertion helper for error unwrapping.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's chain matches target.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}
