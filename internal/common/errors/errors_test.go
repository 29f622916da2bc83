package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardErrorString(t *testing.T) {
	err := NewSkillNotFoundError("jira")
	assert.Equal(t, "StandardError[SKILL_NOT_FOUND]: Skill not registered", err.Error())
	assert.Equal(t, "skill: jira", err.Details)
	assert.False(t, err.Timestamp.IsZero())
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatasetUnavailableError("attrition_data", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Details, "attrition_data")
	assert.Contains(t, err.Details, "connection refused")

	// Constructors without a cause unwrap to nil.
	assert.Nil(t, NewOperationUnsupportedError("sap", "get_forecast").Unwrap())
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("throttled")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"skill not found", NewSkillNotFoundError("jira"), false},
		{"operation unsupported", NewOperationUnsupportedError("sap", "x"), false},
		{"dataset unavailable", NewDatasetUnavailableError("d", cause), true},
		{"notification failed", NewNotificationSendFailedError("sns", cause), true},
		{"wrapped retryable", fmt.Errorf("send digest: %w", NewNotificationSendFailedError("ses", cause)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestErrorsAsFindsStandardError(t *testing.T) {
	wrapped := fmt.Errorf("execute skill: %w", NewSkillNotFoundError("jira"))

	var stdErr *StandardError
	require.True(t, errors.As(wrapped, &stdErr))
	assert.Equal(t, ErrCodeSkillNotFound, stdErr.Code)
}
