package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Command not found")
		assert.Equal(t, "NOT_FOUND: Command not found", err.Error())
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
		details := map[string]string{"field": "nonce", "reason": "too long"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"NotAuthorized", func() *AppError { return NotAuthorized() }, ErrCodeNotAuthorized},
		{"NotKeyholder", func() *AppError { return NotKeyholder() }, ErrCodeNotKeyholder},
		{"NotOwner", func() *AppError { return NotOwner() }, ErrCodeNotOwner},
		{"InvalidSignature", func() *AppError { return InvalidSignature() }, ErrCodeInvalidSignature},
		{"NonceReplayed", func() *AppError { return NonceReplayed() }, ErrCodeNonceReplayed},
		{"NotFound", func() *AppError { return NotFound("Command") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("nonce", "too long") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("nonce") }, ErrCodeMissingRequired},
		{"UnknownCommandType", func() *AppError { return UnknownCommandType("explode") }, ErrCodeUnknownCommandType},
		{"DeviceNotOwned", func() *AppError { return DeviceNotOwned() }, ErrCodeDeviceNotOwned},
		{"CodeNotFound", func() *AppError { return CodeNotFound() }, ErrCodeCodeNotFound},
		{"CodeExpired", func() *AppError { return CodeExpired() }, ErrCodeCodeExpired},
		{"CodeAlreadyUsed", func() *AppError { return CodeAlreadyUsed() }, ErrCodeCodeAlreadyUsed},
		{"PairingNotActive", func() *AppError { return PairingNotActive() }, ErrCodePairingNotActive},
		{"AlreadyRevoked", func() *AppError { return AlreadyRevoked() }, ErrCodeAlreadyRevoked},
		{"AlreadyTerminal", func() *AppError { return AlreadyTerminal() }, ErrCodeAlreadyTerminal},
		{"ConflictingResult", func() *AppError { return ConflictingResult() }, ErrCodeConflictingResult},
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

func TestHelpers(t *testing.T) {
	t.Run("IsAppError detects AppError", func(t *testing.T) {
		assert.True(t, IsAppError(NotAuthorized()))
		assert.False(t, IsAppError(errors.New("plain")))
	})

	t.Run("AsAppError unwraps through fmt wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("handling request: %w", NonceReplayed())
		appErr, ok := AsAppError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, ErrCodeNonceReplayed, appErr.Code)
	})

	t.Run("GetCode falls back to internal for plain errors", func(t *testing.T) {
		assert.Equal(t, ErrCodeCodeExpired, GetCode(CodeExpired()))
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})
}
