package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a record was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates input rejected before any backend call.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a deadline elapsed.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeAuth indicates rejected credentials or an unreachable login endpoint.
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeProfileSync indicates the current-user refresh failed.
	ErrCodeProfileSync ErrorCode = "profile_sync"
	// ErrCodeMutation indicates the backend rejected a create, update or delete.
	ErrCodeMutation ErrorCode = "mutation"
	// ErrCodeForbidden indicates the signed-in user lacks the capability.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeUnauthenticated indicates no active session.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
)

// AppError is a structured error carrying a code, a user-facing message and an
// optional cause. It works with errors.Is and errors.As.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input for validation errors.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound creates a NotFound error.
func NotFound(message string) *AppError { return newError(ErrCodeNotFound, message) }

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newError(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict creates a Conflict error.
func Conflict(message string) *AppError { return newError(ErrCodeConflict, message) }

// Validation creates a Validation error.
func Validation(message string) *AppError { return newError(ErrCodeValidation, message) }

// Validationf creates a Validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return newError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ValidationField creates a Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal creates an Internal error.
func Internal(message string) *AppError { return newError(ErrCodeInternal, message) }

// Auth creates an authentication failure. The message is shown to the user
// verbatim, so it never carries backend detail; the cause is kept for logs.
func Auth(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeAuth, Message: message, Cause: cause}
}

// ProfileSync wraps a failed current-user refresh.
func ProfileSync(cause error) *AppError {
	return &AppError{Code: ErrCodeProfileSync, Message: "profile refresh failed", Cause: cause}
}

// Mutation wraps a rejected write with the message to display.
func Mutation(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeMutation, Message: message, Cause: cause}
}

// Forbidden creates a Forbidden error naming the missing capability.
func Forbidden(message string) *AppError { return newError(ErrCodeForbidden, message) }

// Unauthenticated creates an Unauthenticated error.
func Unauthenticated(message string) *AppError { return newError(ErrCodeUnauthenticated, message) }

// Wrap wraps err with an AppError, preserving the cause. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps err with an AppError and a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation reports whether err is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsInternal reports whether err is an Internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// IsTimeout reports whether err is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled reports whether err is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return isCode(err, ErrCodeAuth) }

// IsProfileSync reports whether err is a profile refresh failure.
func IsProfileSync(err error) bool { return isCode(err, ErrCodeProfileSync) }

// IsMutation reports whether err is a rejected write.
func IsMutation(err error) bool { return isCode(err, ErrCodeMutation) }

// IsForbidden reports whether err is a Forbidden error.
func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

// IsUnauthenticated reports whether err is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return isCode(err, ErrCodeUnauthenticated) }

// GetCode returns the ErrorCode carried by err, or "" if err is not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field carried by err, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// UserMessage returns the message to display for err. AppErrors expose their
// own message without the cause chain; anything else yields fallback.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
