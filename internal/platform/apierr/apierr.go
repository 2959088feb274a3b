package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// NotFound marks a referenced entity id that does not resolve.
func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

// Forbidden marks a role mismatch. Checked before any other validation.
func Forbidden(code string, err error) *Error {
	return New(http.StatusForbidden, code, err)
}

// Validation marks a missing or duplicate required field.
func Validation(code string, err error) *Error {
	return New(http.StatusUnprocessableEntity, code, err)
}

// ExternalLookup marks a metadata/network derivation failure. Callers log
// it and degrade to "unknown" rather than failing the primary action.
func ExternalLookup(code string, err error) *Error {
	return New(http.StatusBadGateway, code, err)
}

func Unauthorized(code string, err error) *Error {
	return New(http.StatusUnauthorized, code, err)
}

// StatusOf maps any error to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf extracts the machine code, defaulting to "internal".
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return "internal"
}

func IsStatus(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}
