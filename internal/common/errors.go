package common

import (
	"errors"
	"net/http"
)

var (
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrAlreadyRegistered = errors.New("admin already registered for this site")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("too many requests")
)

// ValidationError is a BadRequest carrying the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// HTTPStatus maps an error returned by a service to the response status.
// Anything unclassified is a storage failure.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrAlreadyRegistered):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
