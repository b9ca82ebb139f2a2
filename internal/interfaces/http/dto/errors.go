package dto

import (
	"net/http"

	"github.com/storefront/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes live in the shared package.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Domain errors
	shared.CodeValidation:             http.StatusBadRequest,
	shared.CodeNotFound:               http.StatusNotFound,
	shared.CodeUnauthorized:           http.StatusUnauthorized,
	shared.CodeForbidden:              http.StatusForbidden,
	shared.CodeInsufficientStock:      http.StatusConflict,
	shared.CodeConflict:               http.StatusConflict,
	shared.CodeConcurrencyConflict:    http.StatusConflict,
	shared.CodeInvalidStateTransition: http.StatusUnprocessableEntity,

	// Transport errors
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeRouteNotFound:   http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
