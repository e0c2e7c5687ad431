package errors

import (
	"errors"
	"fmt"
)

// Common error types for the timesheets client
var (
	// Transport errors
	ErrTransport    = errors.New("transport failure")
	ErrBodyTooLarge = errors.New("response body too large")

	// Authentication errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionInvalid = errors.New("session invalid")

	// Refresh errors
	ErrNoRefreshToken = errors.New("no session to refresh")
	ErrRefreshFailed  = errors.New("refresh failed")

	// Bootstrap errors
	ErrSessionValidation = errors.New("session validation failed")

	// Request errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidResponse = errors.New("invalid response")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join is errors.Join, exposed so callers don't need both packages.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
