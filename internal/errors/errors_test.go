package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Code not found")
		assert.Equal(t, "NOT_FOUND: Code not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		err := New(ErrCodeAlreadyHoldsCode, "User already holds a code").WithDetails("ABC123")
		assert.Equal(t, "ABC123", err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"NotBound", func() *AppError { return NotBound() }, ErrCodeNotBound},
		{"AdminCapReached", func() *AppError { return AdminCapReached(2) }, ErrCodeAdminCapReached},
		{"AlreadyBound", func() *AppError { return AlreadyBound() }, ErrCodeAlreadyBound},
		{"RootImmutable", func() *AppError { return RootImmutable() }, ErrCodeRootImmutable},
		{"AlreadyHoldsCode", func() *AppError { return AlreadyHoldsCode("ABC123") }, ErrCodeAlreadyHoldsCode},
		{"CodeNotDeletable", func() *AppError { return CodeNotDeletable("ABC123") }, ErrCodeCodeNotDeletable},
		{"NoCodesAvailable", func() *AppError { return NoCodesAvailable() }, ErrCodeNoCodesAvailable},
		{"CodeTaken", func() *AppError { return CodeTaken("ABC123") }, ErrCodeCodeTaken},
		{"NotCodeOwner", func() *AppError { return NotCodeOwner("ABC123") }, ErrCodeNotCodeOwner},
		{"NotFound", func() *AppError { return NotFound("Code") }, ErrCodeNotFound},
		{"DuplicateCode", func() *AppError { return DuplicateCode("ABC123") }, ErrCodeDuplicateCode},
		{"InvalidInput", func() *AppError { return InvalidInput("id", "not numeric") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("id") }, ErrCodeMissingRequired},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestDatabase(t *testing.T) {
	t.Run("wraps database error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Database(cause)
		assert.Equal(t, ErrCodeDatabase, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestRemoteUnavailable(t *testing.T) {
	t.Run("wraps remote service error", func(t *testing.T) {
		cause := errors.New("timeout")
		err := RemoteUnavailable(cause)
		assert.Equal(t, ErrCodeRemoteUnavailable, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestIsAppError(t *testing.T) {
	t.Run("returns true for AppError", func(t *testing.T) {
		err := New(ErrCodeNotFound, "test")
		assert.True(t, IsAppError(err))
	})

	t.Run("returns false for standard error", func(t *testing.T) {
		err := errors.New("standard error")
		assert.False(t, IsAppError(err))
	})

	t.Run("returns true for fmt-wrapped AppError", func(t *testing.T) {
		appErr := New(ErrCodeNoCodesAvailable, "test")
		wrapped := fmt.Errorf("claim: %w", appErr)
		assert.True(t, IsAppError(wrapped))
	})
}

func TestGetCode(t *testing.T) {
	t.Run("returns code of AppError", func(t *testing.T) {
		err := NoCodesAvailable()
		assert.Equal(t, ErrCodeNoCodesAvailable, GetCode(err))
	})

	t.Run("returns internal for standard error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("boom")))
	})

	t.Run("Is matches wrapped codes", func(t *testing.T) {
		err := fmt.Errorf("claim: %w", NoCodesAvailable())
		assert.True(t, Is(err, ErrCodeNoCodesAvailable))
		assert.False(t, Is(err, ErrCodeCodeTaken))
	})
}
