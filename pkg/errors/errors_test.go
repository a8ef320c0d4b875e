package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthentication(t *testing.T) {
	for _, err := range []error{ErrInvalidCredentials, ErrInvalidToken, ErrTokenExpired, ErrUnknownSubject} {
		assert.True(t, IsAuthentication(err), err.Error())
		assert.True(t, IsAuthentication(fmt.Errorf("middleware: %w", err)), "wrapped %v", err)
	}

	for _, err := range []error{ErrForbidden, ErrNotFound, ErrDuplicateEmail, errors.New("timeout"), nil} {
		assert.False(t, IsAuthentication(err))
	}
}

func TestAppError(t *testing.T) {
	bare := NewAppError(CodeValidation, "title is required", nil)
	assert.Equal(t, "title is required", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))

	wrapped := NewAppError(CodeValidation, "invalid input", ErrInvalidInput)
	assert.Equal(t, "invalid input: invalid input data", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrInvalidInput)

	var appErr *AppError
	assert.ErrorAs(t, fmt.Errorf("create listing: %w", wrapped), &appErr)
	assert.Equal(t, CodeValidation, appErr.Code)
}
