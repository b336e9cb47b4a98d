package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of a container error by the
// phase that produced it.
type ErrorClass string

const (
	// ErrorClassResolution indicates invalid wiring detected before any
	// instance was constructed. Fatal to container start.
	ErrorClassResolution ErrorClass = "resolution"

	// ErrorClassCreation indicates a failure while constructing,
	// injecting, or initializing a single instance.
	ErrorClassCreation ErrorClass = "creation"

	// ErrorClassScope indicates a per-request scoping failure.
	// Recoverable by the caller, e.g. by binding a context and retrying.
	ErrorClassScope ErrorClass = "scope"

	// ErrorClassDestruction indicates a failure during teardown.
	// Collected rather than propagated; see DestructionReport.
	ErrorClassDestruction ErrorClass = "destruction"
)

// Error represents a classified container error with context.
type Error struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Component is the component name that caused the error, if applicable.
	Component string `json:"component,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Class, e.Message))
	if e.Component != "" {
		sb.WriteString(fmt.Sprintf(" (component=%s)", e.Component))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewResolutionError creates a new resolution error.
func NewResolutionError(message string, err error) *Error {
	return &Error{Class: ErrorClassResolution, Message: message, Err: err}
}

// NewCreationError creates a new creation error.
func NewCreationError(message string, err error) *Error {
	return &Error{Class: ErrorClassCreation, Message: message, Err: err}
}

// NewScopeError creates a new scope error.
func NewScopeError(message string, err error) *Error {
	return &Error{Class: ErrorClassScope, Message: message, Err: err}
}

// NewDestructionError creates a new destruction error.
func NewDestructionError(message string, err error) *Error {
	return &Error{Class: ErrorClassDestruction, Message: message, Err: err}
}

// WithComponent adds component context to an error.
func (e *Error) WithComponent(name string) *Error {
	e.Component = name
	return e
}

// WithCode adds an error code to an error.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// IsResolution returns true if the error is classified as a resolution error.
func IsResolution(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassResolution
	}
	return false
}

// IsCreation returns true if the error is classified as a creation error.
func IsCreation(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassCreation
	}
	return false
}

// IsScope returns true if the error is classified as a scope error.
func IsScope(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassScope
	}
	return false
}

// IsDestruction returns true if the error is classified as a destruction error.
func IsDestruction(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassDestruction
	}
	return false
}

// Common error codes.
const (
	ErrCodeDuplicateName       = "DUPLICATE_NAME"
	ErrCodeAmbiguousDependency = "AMBIGUOUS_DEPENDENCY"
	ErrCodeMissingDependency   = "MISSING_DEPENDENCY"
	ErrCodeDependencyCycle     = "DEPENDENCY_CYCLE"
	ErrCodeExistenceCycle      = "EXISTENCE_CYCLE"
	ErrCodeUnknownScope        = "UNKNOWN_SCOPE"
	ErrCodeUnknownComponent    = "UNKNOWN_COMPONENT"
	ErrCodeNoContext           = "NO_CONTEXT"
	ErrCodeContainerClosed     = "CONTAINER_CLOSED"
	ErrCodeFactoryFailed       = "FACTORY_FAILED"
	ErrCodeInjectionFailed     = "INJECTION_FAILED"
	ErrCodeHookFailed          = "HOOK_FAILED"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// DestructionReport aggregates the errors collected while closing a
// container. Destruction failures never abort the teardown of the
// remaining components, so callers receive them all at once.
type DestructionReport struct {
	// Errors holds one entry per component whose teardown failed,
	// in destruction order.
	Errors []*Error
}

// Error implements the error interface.
func (r *DestructionReport) Error() string {
	if len(r.Errors) == 0 {
		return "destruction completed without errors"
	}
	names := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		names = append(names, e.Component)
	}
	return fmt.Sprintf("destruction failed for %d component(s): %s",
		len(r.Errors), strings.Join(names, ", "))
}

// Empty returns true if no destruction errors were collected.
func (r *DestructionReport) Empty() bool {
	return len(r.Errors) == 0
}
