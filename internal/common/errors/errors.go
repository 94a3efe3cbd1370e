// Package errors provides standardized error handling for the screening engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInsufficientInput     ErrorCode = "INSUFFICIENT_INPUT"
	ErrCodeBackendUnavailable    ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBatchTooLarge         ErrorCode = "BATCH_TOO_LARGE"
	ErrCodeItemProcessingFailure ErrorCode = "ITEM_PROCESSING_FAILURE"
)

// MsgInsufficientText is the diagnostic message reported for degenerate
// inputs by every estimator.
const MsgInsufficientText = "insufficient text for analysis"

// ErrBatchTooLarge is returned by the ranker before any item is processed
// when a batch exceeds the configured cap.
var ErrBatchTooLarge = errors.New(string(ErrCodeBatchTooLarge))

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewBackendUnavailableError wraps an embedding backend init or inference
// failure. Retryable because the backend may come up later.
func NewBackendUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "semantic backend unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewItemProcessingError wraps a per-item batch failure.
func NewItemProcessingError(sourceID string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeItemProcessingFailure,
		Message:   "failed to process batch item",
		Details:   cause.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"source_id": sourceID},
		Timestamp: time.Now().UTC(),
	}
}
