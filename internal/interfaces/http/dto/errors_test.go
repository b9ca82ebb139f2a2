package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{shared.CodeForbidden, http.StatusForbidden},
		{shared.CodeInsufficientStock, http.StatusConflict},
		{shared.CodeConflict, http.StatusConflict},
		{shared.CodeConcurrencyConflict, http.StatusConflict},
		{shared.CodeInvalidStateTransition, http.StatusUnprocessableEntity},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(shared.CodeValidation, "Request validation failed").
		WithRequestID("req-1").
		WithErrors([]shared.ErrorDetail{{Field: "subtotal", Message: "Must be a decimal amount with at most 2 fractional digits"}})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "Request validation failed", body["message"])
	assert.Equal(t, "req-1", body["requestId"])

	ts, ok := body["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "subtotal", errs[0].(map[string]any)["field"])
}

func TestNewErrorResponse_OmitsEmptyErrors(t *testing.T) {
	resp := NewErrorResponse(ErrCodeInternal, "An unexpected error occurred").WithErrors(nil)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"errors"`)
	assert.NotContains(t, string(raw), `"requestId"`)
}

func TestNewSuccessResponse(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponse(map[string]string{"status": "ok"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, string(raw))
}
