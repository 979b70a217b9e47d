package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Lighting-Map API client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("request not authenticated")
	ErrUserNotApproved    = errors.New("user is not approved")

	// Token errors
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrRefreshFailed = errors.New("token refresh failed")
	ErrNoToken       = errors.New("no access token in session")
	ErrMissingExpiry = errors.New("token missing exp claim")

	// API errors
	ErrMalformedResponse = errors.New("malformed server response")
	ErrNotFound          = errors.New("not found")

	// Session errors
	ErrSessionStorage = errors.New("session storage error")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
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
