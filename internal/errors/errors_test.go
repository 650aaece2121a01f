package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Is(t *testing.T) {
	var target *APIError
	err := error(ErrValidation("limit", "limit must be between 0 and 5000"))

	require.True(t, errors.As(err, &target))
	assert.Equal(t, http.StatusBadRequest, target.StatusCode)
	assert.Equal(t, "Request validation failed", err.Error())
	assert.Equal(t, ValidationError{Field: "limit", Message: "limit must be between 0 and 5000"}, target.Details)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "from", Message: "from must be YYYY-MM-DD"},
		{Field: "to", Message: "to must be YYYY-MM-DD"},
	})
	assert.Equal(t, CodeValidationFailed, err.ErrorCode)
	assert.Len(t, err.Details.(ValidationErrors).Errors, 2)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NotFoundError("chart"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, CodeNotFound, resp.Error.ErrorCode)
	assert.Equal(t, "chart not found", resp.Error.Message)
}

func TestErrPanic(t *testing.T) {
	err := ErrPanic("index out of range")
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "index out of range", err.Details.(PanicRecovery).Message)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusServiceUnavailable, TypeDatasetUnavailable, "Service Unavailable", "", "/api/dataset/summary").
		WithExtension("trace_id", "abc").
		WithExtension("status", "overridden")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	want := map[string]interface{}{
		"type":     TypeDatasetUnavailable,
		"title":    "Service Unavailable",
		"status":   float64(http.StatusServiceUnavailable),
		"instance": "/api/dataset/summary",
		"trace_id": "abc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("problem JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestProblemType(t *testing.T) {
	tests := map[string]string{
		CodeInvalidParameter:   TypeValidation,
		CodeUnknownChart:       TypeUnknownChart,
		CodeDatasetUnavailable: TypeDatasetUnavailable,
		CodeWebSocketUpgrade:   TypeWebSocketUpgrade,
		CodeServiceUnavailable: TypeServiceDown,
		"SOMETHING_ELSE":       TypeInternal,
	}
	for code, want := range tests {
		assert.Equal(t, want, problemType(code), code)
	}
}

func TestHelpersDeriveFromPredefinedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		base   *APIError
		status int
	}{
		{"invalid request", InvalidRequestWithError(errors.New("unexpected EOF")), ErrInvalidRequest, http.StatusBadRequest},
		{"single field", ErrValidation("to", "to must be YYYY-MM-DD"), ErrValidationFailed, http.StatusBadRequest},
		{"several fields", NewValidationErrors([]ValidationError{{Field: "from"}}), ErrValidationFailed, http.StatusBadRequest},
		{"not found", NotFoundError("column"), ErrNotFound, http.StatusNotFound},
		{"upgrade", ErrWebSocketUpgrade.WithStatus(http.StatusForbidden).WithDetails("origin not allowed"), ErrWebSocketUpgrade, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.base)
			assert.Equal(t, tt.base.ErrorCode, tt.err.ErrorCode)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.NotNil(t, tt.err.Details)
		})
	}
	assert.NotErrorIs(t, NotFoundError("chart"), ErrValidationFailed)
}

func TestWithDetails_LeavesPredefinedErrorUntouched(t *testing.T) {
	_ = ErrWebSocketUpgrade.WithStatus(http.StatusBadRequest).WithDetails("missing Upgrade header")

	assert.Equal(t, http.StatusInternalServerError, ErrWebSocketUpgrade.StatusCode)
	assert.Nil(t, ErrWebSocketUpgrade.Details)
	assert.Nil(t, ErrInvalidRequest.Details)
}
