// Package errors defines the application error taxonomy: business errors
// that know which HTTP status and error code they map to.
package errors

import (
	"net/http"

	"authgate/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Is matches by business error code, so detail-carrying copies made with
// WithDetails still compare equal to their predefined base error.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)

	return ok && e.errorCode == other.errorCode
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Validation errors: rejected before any side effect.
	ErrPasswordRequired = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_REQUIRED",
		"Password is required and must be a non-empty string",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Request validation failed",
		"",
	)

	// Authentication failures: intentionally uniform. Login failures never
	// reveal whether the username or the password was wrong.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid credentials",
		"",
	)

	// ErrRefreshForbidden covers every refresh failure: missing token,
	// token not in the registry, bad signature, expired.
	ErrRefreshForbidden = NewBaseError(
		http.StatusForbidden,
		"REFRESH_FORBIDDEN",
		"Forbidden",
		"",
	)

	// Authorization gap on protected routes. Missing and invalid tokens are
	// distinct because clients retry differently (prompt login vs. refresh).
	ErrTokenMissing = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_MISSING",
		"Authorization token is missing",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		http.StatusForbidden,
		"TOKEN_INVALID",
		"Invalid or expired token",
		"",
	)

	// Storage failures: surfaced as internal errors, detail kept for
	// operator visibility but not guaranteed safe for end users.
	ErrRegistrationFailed = NewBaseError(
		http.StatusInternalServerError,
		"REGISTRATION_FAILED",
		"Error registering user",
		"",
	)

	ErrLoginFailed = NewBaseError(
		http.StatusInternalServerError,
		"LOGIN_FAILED",
		"Error logging in",
		"",
	)

	ErrLogoutFailed = NewBaseError(
		http.StatusInternalServerError,
		"LOGOUT_FAILED",
		"Error logging out",
		"",
	)

	ErrTokenExchangeFailed = NewBaseError(
		http.StatusInternalServerError,
		"TOKEN_EXCHANGE_FAILED",
		"Error validating token",
		"",
	)
)

// NewDatabaseExecuteError creates an internal error carrying the underlying
// database failure as detail.
func NewDatabaseExecuteError(err error, message string) *BaseError {
	details := ""
	if err != nil {
		details = err.Error()
	}

	return NewBaseError(
		http.StatusInternalServerError,
		"DATABASE_ERROR",
		message,
		details,
	)
}
