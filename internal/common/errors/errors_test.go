package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		expected string
	}{
		{
			name: "message only",
			err: &StandardError{
				Code:    ErrCodeBackendUnavailable,
				Message: "semantic backend unavailable",
			},
			expected: "StandardError[BACKEND_UNAVAILABLE]: semantic backend unavailable",
		},
		{
			name: "details carry the underlying cause",
			err: &StandardError{
				Code:    ErrCodeItemProcessingFailure,
				Message: "failed to process batch item",
				Details: "panic: malformed encoding",
			},
			expected: "StandardError[ITEM_PROCESSING_FAILURE]: failed to process batch item: panic: malformed encoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNewItemProcessingError(t *testing.T) {
	err := NewItemProcessingError("resume-3", errors.New("broken document"))

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeItemProcessingFailure, err.Code)
	assert.Equal(t, "resume-3", err.Metadata["source_id"])
	assert.Contains(t, err.Error(), "broken document")
	assert.False(t, err.Retryable)
}

func TestNewBackendUnavailableError(t *testing.T) {
	err := NewBackendUnavailableError("model file missing")

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeBackendUnavailable, err.Code)
	assert.Contains(t, err.Error(), "model file missing")
	assert.True(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
}
