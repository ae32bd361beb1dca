package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotBound     ErrorCode = "NOT_BOUND"

	// Capacity / policy
	ErrCodeAdminCapReached  ErrorCode = "ADMIN_CAP_REACHED"
	ErrCodeAlreadyBound     ErrorCode = "ALREADY_BOUND"
	ErrCodeRootImmutable    ErrorCode = "ROOT_IMMUTABLE"
	ErrCodeAlreadyHoldsCode ErrorCode = "ALREADY_HOLDS_CODE"
	ErrCodeCodeNotDeletable ErrorCode = "CODE_NOT_DELETABLE"

	// Not found / race lost
	ErrCodeNoCodesAvailable ErrorCode = "NO_CODES_AVAILABLE"
	ErrCodeCodeTaken        ErrorCode = "CODE_TAKEN"
	ErrCodeNotCodeOwner     ErrorCode = "NOT_CODE_OWNER"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateCode    ErrorCode = "DUPLICATE_CODE"

	// Validation
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Rate limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal / external
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase          ErrorCode = "DATABASE_ERROR"
	ErrCodeRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"
)

// AppError is a structured error that can be rendered to users and operators
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func NotBound() *AppError {
	return New(ErrCodeNotBound, "User is not bound to this bot")
}

func AdminCapReached(cap int) *AppError {
	return New(ErrCodeAdminCapReached, fmt.Sprintf("Admin binding limit (%d) reached", cap))
}

func AlreadyBound() *AppError {
	return New(ErrCodeAlreadyBound, "User is already a bound admin")
}

func RootImmutable() *AppError {
	return New(ErrCodeRootImmutable, "Root identity cannot be bound or unbound")
}

func AlreadyHoldsCode(code string) *AppError {
	return New(ErrCodeAlreadyHoldsCode, "User already holds a code").WithDetails(code)
}

func CodeNotDeletable(code string) *AppError {
	return New(ErrCodeCodeNotDeletable, fmt.Sprintf("Code %s is assigned or missing; only available codes can be deleted", code))
}

func NoCodesAvailable() *AppError {
	return New(ErrCodeNoCodesAvailable, "No authorization codes available")
}

func CodeTaken(code string) *AppError {
	return New(ErrCodeCodeTaken, fmt.Sprintf("Code %s is no longer available", code))
}

func NotCodeOwner(code string) *AppError {
	return New(ErrCodeNotCodeOwner, fmt.Sprintf("Code %s is not held by the requester", code))
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func DuplicateCode(code string) *AppError {
	return New(ErrCodeDuplicateCode, fmt.Sprintf("Code %s is already in the inventory", code))
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

func RemoteUnavailable(cause error) *AppError {
	return Wrap(ErrCodeRemoteUnavailable, "Remote meeting service unavailable", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
