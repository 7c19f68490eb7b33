package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name:     "error without cause",
			appError: NewAppError(ErrTypeSchema, "missing column", nil),
			expected: "[SCHEMA] missing column",
		},
		{
			name:     "error with cause",
			appError: NewAppError(ErrTypeStorage, "cannot write artifact", fmt.Errorf("disk full")),
			expected: "[STORAGE] cannot write artifact: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewParsingError("bad row", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewStorageError("write failed", nil).
		WithContext("path", "output/cleaned_data.csv").
		WithContext("rows", 42)

	require.NotNil(t, err.Context)
	assert.Equal(t, "output/cleaned_data.csv", err.Context["path"])
	assert.Equal(t, 42, err.Context["rows"])
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("data_group_1.csv", "power_output")

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Contains(t, err.Error(), "data_group_1.csv")
	assert.Contains(t, err.Error(), "power_output")
	assert.Equal(t, "data_group_1.csv", err.Context["file"])
	assert.Equal(t, "power_output", err.Context["column"])
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{
			name:    "matching type",
			err:     NewSchemaError("a.csv", "timestamp"),
			errType: ErrTypeSchema,
			want:    true,
		},
		{
			name:    "non-matching type",
			err:     NewStorageError("write failed", nil),
			errType: ErrTypeSchema,
			want:    false,
		},
		{
			name:    "wrapped app error",
			err:     fmt.Errorf("load: %w", NewSchemaError("a.csv", "timestamp")),
			errType: ErrTypeSchema,
			want:    true,
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			errType: ErrTypeStorage,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}
