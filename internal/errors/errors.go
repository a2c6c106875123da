package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken  ErrorCode = "INVALID_TOKEN"
	ErrCodeNotAuthorized ErrorCode = "NOT_AUTHORIZED"
	ErrCodeNotKeyholder  ErrorCode = "NOT_KEYHOLDER"
	ErrCodeNotOwner      ErrorCode = "NOT_OWNER"

	// Command authentication
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrCodeNonceReplayed    ErrorCode = "NONCE_REPLAYED"

	// Validation
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired    ErrorCode = "MISSING_REQUIRED"
	ErrCodeUnknownCommandType ErrorCode = "UNKNOWN_COMMAND_TYPE"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Pairing lifecycle
	ErrCodeDeviceNotOwned   ErrorCode = "DEVICE_NOT_OWNED"
	ErrCodeCodeNotFound     ErrorCode = "CODE_NOT_FOUND"
	ErrCodeCodeExpired      ErrorCode = "CODE_EXPIRED"
	ErrCodeCodeAlreadyUsed  ErrorCode = "CODE_ALREADY_USED"
	ErrCodePairingNotActive ErrorCode = "PAIRING_NOT_ACTIVE"
	ErrCodeAlreadyRevoked   ErrorCode = "ALREADY_REVOKED"

	// Command lifecycle
	ErrCodeAlreadyTerminal   ErrorCode = "ALREADY_TERMINAL"
	ErrCodeConflictingResult ErrorCode = "CONFLICTING_RESULT"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients
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

func InvalidToken(message string) *AppError {
	return New(ErrCodeInvalidToken, message)
}

// NotAuthorized deliberately carries no detail about what exists or
// who owns it.
func NotAuthorized() *AppError {
	return New(ErrCodeNotAuthorized, "Not authorized")
}

func NotKeyholder() *AppError {
	return New(ErrCodeNotKeyholder, "Only the keyholder of this pairing can send commands")
}

func NotOwner() *AppError {
	return New(ErrCodeNotOwner, "Command not found")
}

func InvalidSignature() *AppError {
	return New(ErrCodeInvalidSignature, "Invalid command signature")
}

func NonceReplayed() *AppError {
	return New(ErrCodeNonceReplayed, "Nonce has already been used")
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func UnknownCommandType(cmdType string) *AppError {
	return New(ErrCodeUnknownCommandType, fmt.Sprintf("Unknown command type: %s", cmdType))
}

func DeviceNotOwned() *AppError {
	return New(ErrCodeDeviceNotOwned, "Device not found")
}

func CodeNotFound() *AppError {
	return New(ErrCodeCodeNotFound, "Pairing code not found")
}

func CodeExpired() *AppError {
	return New(ErrCodeCodeExpired, "Pairing code has expired")
}

func CodeAlreadyUsed() *AppError {
	return New(ErrCodeCodeAlreadyUsed, "Pairing code has already been used")
}

func PairingNotActive() *AppError {
	return New(ErrCodePairingNotActive, "Pairing is not active")
}

func AlreadyRevoked() *AppError {
	return New(ErrCodeAlreadyRevoked, "Pairing is already revoked")
}

func AlreadyTerminal() *AppError {
	return New(ErrCodeAlreadyTerminal, "Command already has a result")
}

func ConflictingResult() *AppError {
	return New(ErrCodeConflictingResult, "Command result conflicts with the recorded outcome")
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
