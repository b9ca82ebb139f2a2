package shared

import "fmt"

// ErrorDetail describes a single offending field or resource
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped sentinels match
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying the given details
func (e *DomainError) WithDetails(details ...ErrorDetail) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: append(append([]ErrorDetail{}, e.Details...), details...),
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeConflict               = "CONFLICT"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
)

// Common domain errors
var (
	ErrValidation             = NewDomainError(CodeValidation, "Invalid input provided")
	ErrNotFound               = NewDomainError(CodeNotFound, "Resource not found")
	ErrUnauthorized           = NewDomainError(CodeUnauthorized, "Authentication required")
	ErrForbidden              = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInsufficientStock      = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrConflict               = NewDomainError(CodeConflict, "Resource conflicts with existing state")
	ErrConcurrencyConflict    = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidStateTransition = NewDomainError(CodeInvalidStateTransition, "Operation not allowed in current state")
)

// NewValidationError creates a validation error with an optional field detail
func NewValidationError(field, message string) *DomainError {
	err := NewDomainError(CodeValidation, message)
	if field != "" {
		err.Details = []ErrorDetail{{Field: field, Message: message}}
	}
	return err
}

// NewNotFoundError creates a not found error for the given resource
func NewNotFoundError(resource string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}
