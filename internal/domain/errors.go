package domain

import (
	"fmt"
	"time"
)

// CDSError represents a structured error within the decision-support pipeline
type CDSError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *CDSError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrorCodeInvalidInput     = "INVALID_INPUT"
	ErrorCodeMissingData      = "MISSING_DATA"
	ErrorCodeEvaluationFault  = "EVALUATION_FAULT"
	ErrorCodeNotFound         = "NOT_FOUND"
	ErrorCodeStorageError     = "STORAGE_ERROR"
	ErrorCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrorCodeValidationFailed = "VALIDATION_ERROR"
	ErrorCodeInternalError    = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents patient-record validation failures
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// NewCDSError creates a new structured CDS error
func NewCDSError(code, message, details string) *CDSError {
	return &CDSError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(field, message, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
