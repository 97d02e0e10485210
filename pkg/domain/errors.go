package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a structured failure.
type ErrorCode string

const (
	// Recoverable: the caller can fix the input and retry.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeMissingParam ErrorCode = "MISSING_PARAM"
	CodeInvalidPath  ErrorCode = "INVALID_PATH"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodePrecondition ErrorCode = "PRECONDITION"

	// Not recoverable: retrying the same call will not help.
	CodeTimeout    ErrorCode = "TIMEOUT"
	CodePermission ErrorCode = "PERMISSION"
	CodeInternal   ErrorCode = "INTERNAL"
	CodeDependency ErrorCode = "DEPENDENCY"
)

// Recoverable reports the static default recoverability for the code.
// Individual errors may override it at construction.
func (c ErrorCode) Recoverable() bool {
	switch c {
	case CodeInvalidInput, CodeMissingParam, CodeInvalidPath, CodeNotFound, CodeConflict, CodePrecondition:
		return true
	}
	return false
}

// ErrorDetail is the error object embedded in an error envelope.
type ErrorDetail struct {
	Code        ErrorCode      `json:"code"`
	Message     string         `json:"message"`
	Recoverable bool           `json:"recoverable"`
	Suggestion  string         `json:"suggestion,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
}

// Error is a structured failure raised by tools, validation or protocol
// guards. It carries everything needed to render an error envelope.
type Error struct {
	Code        ErrorCode
	Message     string
	Recoverable bool
	Suggestion  string
	Context     map[string]any
}

// NewError builds an Error with the code's default recoverability.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:        code,
		Message:     message,
		Recoverable: code.Recoverable(),
	}
}

// NewErrorf is NewError with fmt.Sprintf formatting.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithRecoverable overrides the static default for this occurrence.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	e.Recoverable = recoverable
	return e
}

// WithSuggestion attaches a human-actionable hint.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithContext attaches machine-readable context to the error.
func (e *Error) WithContext(ctx map[string]any) *Error {
	e.Context = ctx
	return e
}

func (e *Error) Error() string {
	return e.Message
}

// Detail converts the error to its envelope form.
func (e *Error) Detail() ErrorDetail {
	return ErrorDetail{
		Code:        e.Code,
		Message:     e.Message,
		Recoverable: e.Recoverable,
		Suggestion:  e.Suggestion,
		Context:     e.Context,
	}
}

// Response wraps the error in a full error envelope.
func (e *Error) Response() Response {
	return Response{Status: StatusError, Error: ptr(e.Detail())}
}

// AsError extracts a structured *Error from err, unwrapping as needed.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func ptr[T any](v T) *T { return &v }
