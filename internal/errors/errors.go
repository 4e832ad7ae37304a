// Package errors defines the service error taxonomy used at the HTTP boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable, machine readable error identifier.
type ErrorCode string

const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeDataFetchFailed   ErrorCode = "DATA_FETCH_FAILED"
	ErrCodeDatabaseFailed    ErrorCode = "DATABASE_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is an error with an HTTP mapping.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a detail field and returns the same error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, status int, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// InvalidInput reports a malformed request.
func InvalidInput(message string) *ServiceError {
	return newError(ErrCodeInvalidInput, http.StatusBadRequest, message, nil)
}

// ValidationFailed reports per-field form errors.
func ValidationFailed(message string, fields map[string][]string) *ServiceError {
	e := newError(ErrCodeValidationFailed, http.StatusUnprocessableEntity, message, nil)
	if len(fields) > 0 {
		e.WithDetails("errors", fields)
	}
	return e
}

// NotFound reports a missing resource.
func NotFound(message string) *ServiceError {
	return newError(ErrCodeNotFound, http.StatusNotFound, message, nil)
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "Unauthorized"
	}
	return newError(ErrCodeUnauthorized, http.StatusUnauthorized, message, nil)
}

// InvalidToken reports an unparsable or expired session token.
func InvalidToken(err error) *ServiceError {
	return newError(ErrCodeInvalidToken, http.StatusUnauthorized, "Invalid or expired session", err)
}

// RateLimitExceeded reports a throttled client.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return newError(ErrCodeRateLimitExceeded, http.StatusTooManyRequests, "Too many requests", nil).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

// DataFetchFailed reports a failed read path; message is shown to the user.
func DataFetchFailed(message string, err error) *ServiceError {
	return newError(ErrCodeDataFetchFailed, http.StatusInternalServerError, message, err)
}

// DatabaseFailed reports a failed write path; message is shown to the user.
func DatabaseFailed(message string, err error) *ServiceError {
	return newError(ErrCodeDatabaseFailed, http.StatusInternalServerError, message, err)
}

// Internal reports an unexpected failure.
func Internal(message string, err error) *ServiceError {
	return newError(ErrCodeInternal, http.StatusInternalServerError, message, err)
}

// GetServiceError extracts a *ServiceError from err's chain.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
