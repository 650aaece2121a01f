package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// Is matches another APIError with the same error code, so errors derived
// from a predefined error still satisfy errors.Is against it.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.ErrorCode == e.ErrorCode
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	c := *e
	c.Details = details
	return &c
}

// WithStatus returns a copy of e answered with status.
func (e *APIError) WithStatus(status int) *APIError {
	c := *e
	c.StatusCode = status
	return &c
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes shared by the helpers below and the problem type mapping.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeNotFound           = "NOT_FOUND"
	CodeUnknownChart       = "UNKNOWN_CHART"
	CodeUnknownColumn      = "UNKNOWN_COLUMN"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer     = "INTERNAL_SERVER_ERROR"
	CodeWebSocketUpgrade   = "WEBSOCKET_UPGRADE_FAILED"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrInvalidParameter = New(http.StatusBadRequest, CodeInvalidParameter, "Invalid parameter value")

	// 404 Not Found
	ErrNotFound = New(http.StatusNotFound, CodeNotFound, "Resource not found")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer   = New(http.StatusInternalServerError, CodeInternalServer, "Internal server error")
	ErrWebSocketUpgrade = New(http.StatusInternalServerError, CodeWebSocketUpgrade, "WebSocket upgrade failed")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.WithDetails(err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.WithDetails(ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	err := ErrNotFound.WithDetails(resource)
	err.Message = fmt.Sprintf("%s not found", resource)
	return err
}

// UnknownChartError reports a chart name that is not registered.
func UnknownChartError(name string, known []string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeUnknownChart, fmt.Sprintf("Chart %q not found", name), map[string]interface{}{
		"chart":     name,
		"available": known,
	})
}

// UnknownColumnError reports a column name missing from the schema.
func UnknownColumnError(name string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeUnknownColumn, fmt.Sprintf("Column %q not found", name), name)
}

// DatasetUnavailableError reports that the ride dataset could not be loaded.
// code is the dataset error code, for example FILE_NOT_FOUND.
func DatasetUnavailableError(code string, err error) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, CodeDatasetUnavailable, "Ride dataset is unavailable", map[string]string{
		"reason": code,
		"error":  err.Error(),
	})
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ValidationErrors{Errors: errors})
}

// PanicRecovery represents panic recovery information
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates a panic recovery error
func ErrPanic(rec interface{}) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		CodeInternalServer,
		"Internal server error",
		PanicRecovery{
			Message: fmt.Sprintf("%v", rec),
		},
	)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}

// NewValidationError creates a simple validation error
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// NewInternalError creates a simple internal server error
func NewInternalError(message string) *APIError {
	return New(http.StatusInternalServerError, CodeInternalServer, message)
}
