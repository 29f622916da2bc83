// Package errors provides standardized error handling for the orchestration agent.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSkillNotFound        ErrorCode = "SKILL_NOT_FOUND"
	ErrCodeOperationUnsupported ErrorCode = "OPERATION_UNSUPPORTED"
	ErrCodeDatasetUnavailable   ErrorCode = "DATASET_UNAVAILABLE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying failure, when there is one.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewSkillNotFoundError creates a non-retryable unknown-skill error.
func NewSkillNotFoundError(skill string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSkillNotFound,
		Message:   "Skill not registered",
		Details:   fmt.Sprintf("skill: %s", skill),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOperationUnsupportedError creates a non-retryable unknown-operation error.
func NewOperationUnsupportedError(skill, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOperationUnsupported,
		Message:   "Operation not supported by skill",
		Details:   fmt.Sprintf("skill: %s, operation: %s", skill, operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetUnavailableError creates a retryable dataset fetch error.
func NewDatasetUnavailableError(name string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetUnavailable,
		Message:   "Dataset could not be loaded",
		Details:   fmt.Sprintf("dataset: %s, error: %s", name, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsRetryable reports whether err carries a StandardError marked retryable.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
