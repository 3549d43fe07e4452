package gantry

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeInvalidDefinition indicates a definition or argument is invalid or nil
	CodeInvalidDefinition = "INVALID_DEFINITION"

	// CodeServiceAlreadyExists indicates a service id is already defined or cached
	CodeServiceAlreadyExists = "SERVICE_ALREADY_EXISTS"

	// CodeServiceNotFound indicates a service was not found in the container
	CodeServiceNotFound = "SERVICE_NOT_FOUND"

	// CodeCircularDependency indicates a circular dependency was detected
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeBuildFailed indicates an error occurred while building a service
	CodeBuildFailed = "BUILD_FAILED"

	// CodeNotCallable indicates a target cannot be invoked
	CodeNotCallable = "NOT_CALLABLE"

	// CodeTypeMismatch indicates a type mismatch during resolution or assignment
	CodeTypeMismatch = "TYPE_MISMATCH"
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is the coded error type used for every failure the container reports.
// Errors carry a stable machine-readable code, an optional cause, and a
// context map for structured details.
type Error struct {
	Code    string
	Message string
	cause   error
	context map[string]any
}

// NewError creates a coded error wrapping an optional cause.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error returns the formatted error string.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the wrapped cause, if any.
func (e *Error) Cause() error {
	return e.cause
}

// WithContext attaches a key/value detail to the error and returns it.
func (e *Error) WithContext(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// GetContext returns the attached context details.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// Is matches errors by code so errors.Is works against sentinels and
// constructed instances alike.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// ErrorCode extracts the code from a container error, or "" for foreign errors.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrInvalidTarget is returned when a nil or invalid definition target is provided.
var ErrInvalidTarget = NewError(CodeInvalidDefinition, "definition target cannot be nil", nil)

// ErrServiceNotFoundSentinel is a sentinel error for service not found (for error checking).
var ErrServiceNotFoundSentinel = NewError(CodeServiceNotFound, "service not found", nil)

// ErrCircularDependencySentinel is a sentinel error for circular dependency (for error checking).
var ErrCircularDependencySentinel = NewError(CodeCircularDependency, "circular dependency", nil)

// ErrNotCallableSentinel is a sentinel error for invoking something that is not callable.
var ErrNotCallableSentinel = NewError(CodeNotCallable, "target is not callable", nil)

// ErrTypeMismatchSentinel is a sentinel error for type mismatch during resolution.
var ErrTypeMismatchSentinel = NewError(CodeTypeMismatch, "type mismatch", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrServiceAlreadyExists creates an error for when a service id is already taken
func ErrServiceAlreadyExists(serviceID string) *Error {
	return NewError(
		CodeServiceAlreadyExists,
		fmt.Sprintf("service '%s' already exists", serviceID),
		nil,
	).WithContext("service", serviceID)
}

// ErrServiceNotFound creates an error for when a service is not found
func ErrServiceNotFound(serviceID string) *Error {
	return NewError(
		CodeServiceNotFound,
		fmt.Sprintf("service '%s' not found", serviceID),
		nil,
	).WithContext("service", serviceID)
}

// ErrInvalidDefinition creates an error for a malformed definition
func ErrInvalidDefinition(serviceID, reason string) *Error {
	return NewError(
		CodeInvalidDefinition,
		fmt.Sprintf("invalid definition '%s': %s", serviceID, reason),
		nil,
	).WithContext("service", serviceID)
}

// NewBuildError creates an error for a failed build stage of a service
func NewBuildError(serviceID, stage string, cause error) *Error {
	return NewError(
		CodeBuildFailed,
		fmt.Sprintf("service '%s' failed during %s", serviceID, stage),
		cause,
	).WithContext("service", serviceID).
		WithContext("stage", stage)
}

// ErrServiceNotLoaded creates an error for a deferred call whose caller left the cache
func ErrServiceNotLoaded(serviceID string) *Error {
	return NewError(
		CodeBuildFailed,
		fmt.Sprintf("service '%s' is not loaded", serviceID),
		nil,
	).WithContext("service", serviceID)
}

// ErrCircularDependency creates an error for circular dependency detection.
// The chain lists every service currently being built, in entry order.
func ErrCircularDependency(serviceID string, chain []string) *Error {
	return NewError(
		CodeCircularDependency,
		fmt.Sprintf("circular dependency detected on '%s' (building: %s); break the cycle by moving the reference into a method call",
			serviceID, strings.Join(chain, " -> ")),
		nil,
	).WithContext("service", serviceID).
		WithContext("chain", chain)
}

// ErrNotCallable creates an error for attempting to invoke a non-callable target
func ErrNotCallable(target any) *Error {
	return NewError(
		CodeNotCallable,
		fmt.Sprintf("target of type %T is not callable", target),
		nil,
	).WithContext("target_type", fmt.Sprintf("%T", target))
}

// ErrMethodNotFound creates an error for a call on a method the instance does not have
func ErrMethodNotFound(serviceID, method string) *Error {
	return NewError(
		CodeNotCallable,
		fmt.Sprintf("service '%s' has no method '%s'", serviceID, method),
		nil,
	).WithContext("service", serviceID).
		WithContext("method", method)
}

// ErrTypeMismatch creates an error for type mismatch during resolution
func ErrTypeMismatch(serviceID string, actual any) *Error {
	return NewError(
		CodeTypeMismatch,
		fmt.Sprintf("service '%s' type mismatch: got %T", serviceID, actual),
		nil,
	).WithContext("service", serviceID).
		WithContext("actual_type", fmt.Sprintf("%T", actual))
}
