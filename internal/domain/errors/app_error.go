package apperrors

import "errors"

// AppError represents an application error with a stable code
// @Description An application error with a code, message and optional details
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	KeyMaterialError        = "INVALID_KEY_MATERIAL"
	KeyMismatchError        = "KEY_PAIR_MISMATCH"
	NotReadyError           = "SERVICE_NOT_READY"
	AlreadyInitializedError = "ALREADY_INITIALIZED"
	MalformedTokenError     = "TOKEN_MALFORMED"
	SignatureError          = "TOKEN_SIGNATURE_INVALID"
	ExpiredTokenError       = "TOKEN_EXPIRED"
	TokenTypeError          = "TOKEN_TYPE_MISMATCH"
	RevokedTokenError       = "TOKEN_REVOKED"
	GenerationError         = "TOKEN_GENERATION_FAILED"
	IdentityError           = "INVALID_IDENTITY"
	RevocationStoreError    = "REVOCATION_STORE_UNAVAILABLE"
)

// New creates a new application error
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// GetMessage returns the error message without details
func (e *AppError) GetMessage() string {
	return e.Message
}

// GetCode returns the error code
func (e *AppError) GetCode() string {
	return e.Code
}

// WithDetails returns a copy of the error carrying the underlying cause.
// The copy still matches the original via errors.Is, so callers can attach
// context without losing the error kind.
func (e *AppError) WithDetails(err error) *AppError {
	if err == nil {
		return e
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: err.Error(),
	}
}

// Is reports whether target is an AppError with the same code
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// HasCode checks if the error is an AppError with the given code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
