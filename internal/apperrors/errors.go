// Package apperrors provides typed error handling for the controller.
// It uses struct-based errors with separate user-safe and internal messages.
package apperrors

import "fmt"

// Code categorizes errors for consistent handling across the application.
type Code int

// Error codes for categorizing application errors.
const (
	// CodeUnknown indicates an unspecified error type
	CodeUnknown Code = iota
	// CodeSchema indicates a pipeline description failed engine validation
	CodeSchema
	// CodeEngine indicates a transport or protocol failure talking to the engine
	CodeEngine
	// CodeInvariant indicates an internal programming error, such as a
	// catalog lookup for a key that was never built
	CodeInvariant
	// CodeInvalidInput indicates malformed or invalid input
	CodeInvalidInput
)

// Error represents a domain error with separate user-safe and internal messages.
// The Message field is always safe to expose to clients.
// The Internal field contains debugging details and should only be logged.
type Error struct {
	Code     Code   // Error category for handler mapping
	Message  string // User-safe message (always exposable)
	Internal string // Internal details (for logging only)
	Err      error  // Wrapped underlying error
}

// Error implements the error interface.
// Returns the user-safe message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithInternal adds internal debugging details to the error.
func (e *Error) WithInternal(format string, args ...any) *Error {
	e.Internal = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Is reports whether target matches this error's code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeSchema:
		return "schema"
	case CodeEngine:
		return "engine"
	case CodeInvariant:
		return "invariant"
	case CodeInvalidInput:
		return "invalid_input"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Schema creates a new schema validation error with the given message.
func Schema(message string) *Error {
	return &Error{
		Code:    CodeSchema,
		Message: message,
	}
}

// Engine creates a new engine transport error with the given message.
func Engine(message string) *Error {
	return &Error{
		Code:    CodeEngine,
		Message: message,
	}
}

// Invariant creates a new invariant violation error with the given message.
func Invariant(message string) *Error {
	return &Error{
		Code:    CodeInvariant,
		Message: message,
	}
}

// InvalidInput creates a new invalid input error with the given message.
func InvalidInput(message string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: message,
	}
}
