package domain

import (
	"fmt"
	"net/http"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Status: http.StatusNotFound}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: http.StatusConflict}
}

// ErrTeamExists is the conflict raised when a user already owns a team.
// Existing clients expect 400 here rather than 409.
func ErrTeamExists() *AppError {
	return &AppError{Code: "CONFLICT", Message: "user already has a team", Status: http.StatusBadRequest}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: http.StatusUnprocessableEntity}
}

func ErrBadRequest(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: http.StatusBadRequest}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: http.StatusUnauthorized}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: http.StatusForbidden}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: http.StatusTooManyRequests}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: http.StatusTooManyRequests}
}

// ErrStoreUnavailable wraps a failed store or provider call.
func ErrStoreUnavailable(msg string, cause error) *AppError {
	return &AppError{Code: "STORE_UNAVAILABLE", Message: msg, Status: http.StatusInternalServerError, Cause: cause}
}

// ErrStoreInconsistent reports a store call that succeeded but returned an unexpected shape.
func ErrStoreInconsistent(msg string) *AppError {
	return &AppError{Code: "STORE_INCONSISTENT", Message: msg, Status: http.StatusInternalServerError}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: http.StatusInternalServerError, Cause: cause}
}
