package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error for transport-layer mapping.
type ErrorCode string

const (
	CodeValidation           ErrorCode = "VALIDATION_ERROR"
	CodeConflict             ErrorCode = "CONFLICT"
	CodeInvalidState         ErrorCode = "INVALID_STATE"
	CodePaymentRequired      ErrorCode = "PAYMENT_REQUIRED"
	CodeIncompleteInspection ErrorCode = "INCOMPLETE_INSPECTION"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeForbidden            ErrorCode = "FORBIDDEN"
	CodeStorage              ErrorCode = "STORAGE_ERROR"
)

// Error is a typed domain error carrying a stable code and a human-readable message.
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewValidationError reports malformed or inconsistent caller input.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewConflictError reports a collision with existing state (unavailable dates,
// concurrent modification).
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewInvalidStateError reports a lifecycle transition attempted from a state that
// does not allow it.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewPaymentRequiredError reports an operation gated on payment that has not cleared.
func NewPaymentRequiredError(message string) *Error {
	return &Error{Code: CodePaymentRequired, Message: message}
}

// NewIncompleteInspectionError reports an inspection payload that does not meet the
// capture requirements.
func NewIncompleteInspectionError(message string) *Error {
	return &Error{Code: CodeIncompleteInspection, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError reports an operation the acting user may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewStorageError wraps a persistence-layer failure.
func NewStorageError(cause error) *Error {
	return &Error{Code: CodeStorage, Message: "storage failure", cause: cause}
}

// CodeOf extracts the domain error code from err, or empty string if err is not a
// domain error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
