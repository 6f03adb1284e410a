// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

/*
Package apperr defines the centralized error handling framework for Inmobix.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Dedicated constructors for every account-lifecycle failure mode.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the canonical error type for the Inmobix API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "EXPIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// RetryAfter is the remaining wait before a rate-limited action may be
	// retried. Zero for every code except RATE_LIMITED.
	RetryAfter time.Duration `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Property") // Returns "Property not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Account Lifecycle Taxonomy

// DuplicateIdentity creates a 409 [AppError] naming the conflicting
// identity field (email, username, or document).
func DuplicateIdentity(field string) *AppError {
	return &AppError{
		Code:       "DUPLICATE_IDENTITY",
		Message:    fmt.Sprintf("The %s is already registered", field),
		HTTPStatus: http.StatusConflict,
		Details:    []FieldError{{Field: field, Message: "Already in use"}},
	}
}

// InvalidCredentials creates the uniform 401 login failure.
//
// The message is identical for unknown-email and wrong-password so that the
// endpoint cannot be used to enumerate registered accounts.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotVerified creates the 401 [AppError] that blocks login until the
// account's email has been confirmed.
func NotVerified() *AppError {
	return &AppError{
		Code:       "NOT_VERIFIED",
		Message:    "You must verify your email before logging in. Check your inbox.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates a 400 [AppError] for a token that matches no live triple.
func InvalidToken(workflow string) *AppError {
	return &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Invalid " + workflow + " token",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidCode creates a 400 [AppError] for a code that does not match its token.
func InvalidCode(workflow string) *AppError {
	return &AppError{
		Code:       "INVALID_CODE",
		Message:    "Invalid " + workflow + " code",
		HTTPStatus: http.StatusBadRequest,
	}
}

// Expired creates a 400 [AppError] for a token/code pair past its expiry.
func Expired() *AppError {
	return &AppError{
		Code:       "EXPIRED",
		Message:    "The code has expired. Request a new one.",
		HTTPStatus: http.StatusBadRequest,
	}
}

// RateLimited creates a 429 [AppError] reporting the remaining wait as m:ss.
//
// The remaining duration is computed by the caller from the stored expiry at
// the moment of the check, per the one-live-triple-at-a-time rule.
func RateLimited(remaining time.Duration) *AppError {
	seconds := int(remaining.Seconds())
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("An active code already exists. You can request a new one in %d:%02d", seconds/60, seconds%60),
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: remaining,
	}
}

// AlreadyVerified creates a 400 [AppError] for a resend on a verified account.
func AlreadyVerified() *AppError {
	return &AppError{
		Code:       "ALREADY_VERIFIED",
		Message:    "This account is already verified",
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}

// CodeOf returns the machine-readable code of err, or "" for non-app errors.
func CodeOf(err error) string {
	ae := As(err)
	if ae == nil {
		return ""
	}
	return ae.Code
}
