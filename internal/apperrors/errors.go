// Package apperrors defines the error kinds shared across flagpic packages.
package apperrors

import (
	"errors"
	"fmt"
)

// InvalidCodeError is returned when a country code is not a known two-letter code.
type InvalidCodeError struct {
	Code   string
	Reason string
}

func (e *InvalidCodeError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("unknown country code %q", e.Code)
}

// NewInvalidCode returns an InvalidCodeError for code, explaining why it was rejected.
func NewInvalidCode(code string) error {
	if len([]rune(code)) != 2 {
		return &InvalidCodeError{Code: code, Reason: "Country code must be a 2 character string"}
	}
	return &InvalidCodeError{Code: code}
}

// IsInvalidCode reports whether err is or wraps an InvalidCodeError.
func IsInvalidCode(err error) bool {
	var e *InvalidCodeError
	return errors.As(err, &e)
}

// NotFoundError is returned when no flag asset exists for a code or identifier.
type NotFoundError struct {
	What string // code or identifier
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no flag found for %q: %v", e.What, e.Err)
	}
	return fmt.Sprintf("no flag found for %q", e.What)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// InvalidPathError is returned when a directory argument does not exist or is not a directory.
type InvalidPathError struct {
	Path string
	Err  error
}

func (e *InvalidPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("path %q is not a directory: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("path %q is not a directory", e.Path)
}

func (e *InvalidPathError) Unwrap() error { return e.Err }

// IsInvalidPath reports whether err is or wraps an InvalidPathError.
func IsInvalidPath(err error) bool {
	var e *InvalidPathError
	return errors.As(err, &e)
}
