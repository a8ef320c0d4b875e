package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")

	ErrInvalidToken   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrUnknownSubject = errors.New("token subject is not a registered user")

	ErrForbidden = errors.New("insufficient permissions")
	ErrNotFound  = errors.New("resource not found")

	ErrInvalidInput = errors.New("invalid input data")
)

const (
	CodeValidation = "VALIDATION_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAuthentication reports whether err means the caller could not be
// identified, as opposed to being identified and refused.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUnknownSubject)
}
