package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewInternalError("failed to load centers", fmt.Errorf("connection reset"))
	assert.Equal(t, "INTERNAL: failed to load centers: connection reset", err.Error())

	plain := NewValidationError("now must be set")
	assert.Equal(t, "VALIDATION: now must be set", plain.Error())
}

func TestIsType_UnwrapsWrappedErrors(t *testing.T) {
	base := NewOutOfRangeError("maxDaysAhead must be positive")
	wrapped := fmt.Errorf("scoring center c-1: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeOutOfRange))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeValidation))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(NewValidationError("bad")))
	assert.True(t, IsClientError(NewOutOfRangeError("bad")))
	assert.False(t, IsClientError(NewNotFoundError("missing")))
	assert.False(t, IsClientError(nil))
}
