package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
	ErrCodeRejected   = "LIBRARY_REJECTED"
	ErrCodeTimeout    = "RENDER_TIMEOUT"
	ErrCodeCrash      = "RENDER_CRASH"
	ErrCodeRender     = "RENDER_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
)

// SeamarkError is the structured error type for all seamark operations.
type SeamarkError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *SeamarkError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SeamarkError) Unwrap() error {
	return e.Cause
}

// NewError creates a new SeamarkError.
func NewError(code, message string) *SeamarkError {
	return &SeamarkError{Code: code, Message: message}
}

// NewErrorf creates a new SeamarkError with a formatted message.
func NewErrorf(code, format string, args ...any) *SeamarkError {
	return &SeamarkError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *SeamarkError) WithCause(err error) *SeamarkError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *SeamarkError) WithDetails(details map[string]any) *SeamarkError {
	e.Details = details
	return e
}
