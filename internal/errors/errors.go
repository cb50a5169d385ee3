package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingEntity ErrorType = "MISSING_ENTITY"
	ErrTypeInvalidCode   ErrorType = "INVALID_CODE"
	ErrTypeMalformed     ErrorType = "MALFORMED_OBSERVATION"
	ErrTypeStale         ErrorType = "STALE_BULLETIN"
	ErrTypeIO            ErrorType = "IO_FAILURE"
	ErrTypeValidation    ErrorType = "VALIDATION"
	ErrTypeConfig        ErrorType = "CONFIG"
)

// Sentinels for errors.Is. Matching is by type only, so any AppError of the
// same type satisfies errors.Is(err, ErrMissingEntity) and friends.
var (
	ErrMissingEntity = &AppError{Type: ErrTypeMissingEntity}
	ErrInvalidCode   = &AppError{Type: ErrTypeInvalidCode}
	ErrMalformed     = &AppError{Type: ErrTypeMalformed}
	ErrStale         = &AppError{Type: ErrTypeStale}
	ErrIO            = &AppError{Type: ErrTypeIO}
	ErrValidation    = &AppError{Type: ErrTypeValidation}
	ErrConfig        = &AppError{Type: ErrTypeConfig}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Type)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError carrying the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Recoverable reports whether the error is handled locally by the merger
// (format and staleness problems) rather than aborting the call.
func (e *AppError) Recoverable() bool {
	return e.Type == ErrTypeMalformed || e.Type == ErrTypeStale
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewMissingEntityError reports a ledger that was never initialized.
func NewMissingEntityError(entity string) *AppError {
	return NewAppError(ErrTypeMissingEntity, fmt.Sprintf("entity %q not initialized", entity), nil).
		WithContext("entity", entity)
}

// NewInvalidCodeError reports an unknown contract-month or route code.
func NewInvalidCodeError(kind, code string) *AppError {
	return NewAppError(ErrTypeInvalidCode, fmt.Sprintf("unknown %s code %q", kind, code), nil).
		WithContext("code", code)
}

// NewMalformedError reports a field value failing its format check.
func NewMalformedError(field, value string, cause error) *AppError {
	return NewAppError(ErrTypeMalformed, fmt.Sprintf("field %q value %q", field, value), cause).
		WithContext("field", field)
}

// NewStaleError reports a bulletin rejected by the freshness check.
func NewStaleError(entity string, cycle int) *AppError {
	return NewAppError(ErrTypeStale, fmt.Sprintf("stale bulletin for %s cycle %d", entity, cycle), nil).
		WithContext("entity", entity).
		WithContext("cycle", cycle)
}

// NewIOError wraps a storage failure.
func NewIOError(operation string, cause error) *AppError {
	return NewAppError(ErrTypeIO, operation, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the AppError type found in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
