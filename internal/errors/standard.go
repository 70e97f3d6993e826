// Package errors provides standardized error messaging for Auriga
package errors

import (
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryInvariant  ErrorCategory = "INVARIANT"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategorySystem     ErrorCategory = "SYSTEM"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Invariant creates an internal-invariant violation error. Invariant
// violations indicate the caller broke a documented precondition of a
// compiler pass.
func Invariant(code, message string, context map[string]interface{}) *StandardError {
	return NewStandardError(CategoryInvariant, code, message, context)
}

// InvariantViolation panics with an internal-invariant violation. The
// compilation process terminates; these are programming errors, not
// recoverable conditions, and are never caught or retried.
func InvariantViolation(code, format string, args ...interface{}) {
	panic(Invariant(code, fmt.Sprintf(format, args...), nil))
}
