package dto

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Response represents a standard success response
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse is the envelope every failed request answers with
type ErrorResponse struct {
	Success   bool                 `json:"success"`
	Code      string               `json:"code"`
	Message   string               `json:"message"`
	Timestamp string               `json:"timestamp"`
	RequestID string               `json:"requestId,omitempty"`
	Errors    []shared.ErrorDetail `json:"errors,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error envelope stamped with the current UTC time
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// WithRequestID sets the request ID echoed back to the client
func (r ErrorResponse) WithRequestID(id string) ErrorResponse {
	r.RequestID = id
	return r
}

// WithErrors attaches per-field details
func (r ErrorResponse) WithErrors(details []shared.ErrorDetail) ErrorResponse {
	if len(details) > 0 {
		r.Errors = details
	}
	return r
}

// PageQuery holds common pagination query parameters
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// DefaultPageQuery returns a page query with defaults
func DefaultPageQuery() PageQuery {
	return PageQuery{
		Page:     1,
		PageSize: 20,
	}
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
