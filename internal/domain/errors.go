// Package domain provides the canonical error envelope returned by the BFF.
package domain

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is the machine-readable error classification exposed to callers.
type ErrorCode string

const (
	// ErrorCodeValidation indicates a request body failed validation.
	ErrorCodeValidation ErrorCode = "validation_error"

	// ErrorCodeBadRequest indicates a malformed or unacceptable request.
	ErrorCodeBadRequest ErrorCode = "bad_request"

	// ErrorCodeInvalidSignature indicates an onboarding signature mismatch.
	ErrorCodeInvalidSignature ErrorCode = "invalid_signature"

	// ErrorCodeInvalidCredentials indicates a failed login attempt.
	ErrorCodeInvalidCredentials ErrorCode = "invalid_credentials"

	// ErrorCodeInternal indicates an unexpected server-side failure. The
	// message returned to the caller is generic; detail stays in the logs.
	ErrorCodeInternal ErrorCode = "internal_error"
)

// APIError is an error that maps to a structured HTTP error response.
type APIError struct {
	// Code is the machine-readable classification.
	Code ErrorCode `json:"error"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Details optionally lists per-field validation failures.
	Details []string `json:"details,omitempty"`

	// StatusCode is the HTTP status to respond with.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorResponse is the wire shape of every error the BFF returns.
type ErrorResponse struct {
	Error     ErrorCode `json:"error"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// Response converts the error to its wire shape, stamping the current time.
func (e *APIError) Response() ErrorResponse {
	return ErrorResponse{
		Error:     e.Code,
		Message:   e.Message,
		Details:   e.Details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrValidation builds a 400 validation error with per-field details.
func ErrValidation(details ...string) *APIError {
	return &APIError{
		Code:       ErrorCodeValidation,
		Message:    "Validation failed",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

// ErrBadRequest builds a 400 error with the given message.
func ErrBadRequest(message string) *APIError {
	return &APIError{
		Code:       ErrorCodeBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// ErrInvalidSignature builds the onboarding signature rejection.
func ErrInvalidSignature() *APIError {
	return &APIError{
		Code:       ErrorCodeInvalidSignature,
		Message:    "Please type 'I agree' to confirm",
		StatusCode: http.StatusBadRequest,
	}
}

// ErrInvalidCredentials builds the 401 login failure.
func ErrInvalidCredentials() *APIError {
	return &APIError{
		Code:       ErrorCodeInvalidCredentials,
		Message:    "Invalid username or password",
		StatusCode: http.StatusUnauthorized,
	}
}

// ErrInternal builds a generic 500. The underlying cause is logged by the
// caller, never returned to the client.
func ErrInternal() *APIError {
	return &APIError{
		Code:       ErrorCodeInternal,
		Message:    "An unexpected error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}
