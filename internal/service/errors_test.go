package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without underlying cause",
			err: &Error{
				Code:    "test_error",
				Message: "test message",
			},
			expected: "test message",
		},
		{
			name: "error with underlying cause",
			err: &Error{
				Code:    "test_error",
				Message: "test message",
				Err:     errors.New("underlying error"),
			},
			expected: "test message: underlying error",
		},
		{
			name:     "wrapped domain error is not repeated",
			err:      wrapError("test_error", errors.New("account is frozen")),
			expected: "account is frozen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:    "test_error",
		Message: "test message",
		Err:     underlying,
	}

	assert.Equal(t, underlying, err.Unwrap())
	assert.True(t, errors.Is(err, underlying))
}

func TestError_NoUnwrap(t *testing.T) {
	err := &Error{
		Code:    "test_error",
		Message: "test message",
	}

	assert.Nil(t, err.Unwrap())
}
