package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the prediction pipeline. Typed errors below unwrap to
// one of these so callers can use errors.Is.
var (
	ErrModelLoad        = errors.New("model load failed")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInference        = errors.New("inference failed")
	ErrPreprocessing    = errors.New("preprocessing failed")
)

// ModelLoadError reports a model file that is missing, unreadable or invalid.
type ModelLoadError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model from %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *ModelLoadError) Unwrap() []error {
	return []error{ErrModelLoad, e.Err}
}

// NewModelLoadError creates a new ModelLoadError
func NewModelLoadError(path string, err error) *ModelLoadError {
	return &ModelLoadError{Path: path, Err: err}
}

// InferenceError reports a model that raised or returned malformed output.
type InferenceError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("inference error: %s", e.Reason)
}

// Unwrap returns the underlying cause
func (e *InferenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInference}
	}
	return []error{ErrInference, e.Err}
}

// NewInferenceError creates a new InferenceError
func NewInferenceError(reason string, err error) *InferenceError {
	return &InferenceError{Reason: reason, Err: err}
}

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"error"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeModelLoad      = "MODEL_LOAD_ERROR"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
