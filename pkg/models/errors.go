package models

import (
	"errors"
	"fmt"
	"maps"
)

// Codes carried by ActionError.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeDecode        = "DECODE_ERROR"
	ErrCodeInvalidSchema = "INVALID_SCHEMA"
	ErrCodeFilter        = "FILTER_ERROR"
)

// ActionError reports a failure tied to an action or to the manifest that
// declares it. Code is one of the ErrCode constants.
type ActionError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Action  string         `json:"action,omitempty"`
	Cause   error          `json:"-"`
}

func (e *ActionError) Error() string {
	msg := e.Message
	if e.Action != "" {
		msg = "action " + e.Action + ": " + msg
	}
	return "[" + e.Code + "] " + msg
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// Is matches any *ActionError with the same code, so
// errors.Is(err, &ActionError{Code: ErrCodeConflict}) tests the kind.
func (e *ActionError) Is(target error) bool {
	t, ok := target.(*ActionError)
	return ok && t.Code != "" && t.Code == e.Code
}

// NewError returns an error with the given code.
func NewError(code, message string) *ActionError {
	return &ActionError{Code: code, Message: message}
}

// NewErrorf is NewError with a formatted message.
func NewErrorf(code, format string, args ...any) *ActionError {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithAction names the offending action.
func (e *ActionError) WithAction(name string) *ActionError {
	e.Action = name
	return e
}

// WithCause records the underlying error.
func (e *ActionError) WithCause(err error) *ActionError {
	e.Cause = err
	return e
}

// WithDetails merges details into the error, overwriting existing keys.
func (e *ActionError) WithDetails(details map[string]any) *ActionError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets a single detail.
func (e *ActionError) WithDetail(key string, value any) *ActionError {
	return e.WithDetails(map[string]any{key: value})
}

// CodeOf returns the code of the first ActionError in err's chain, or "".
func CodeOf(err error) string {
	var actErr *ActionError
	if errors.As(err, &actErr) {
		return actErr.Code
	}
	return ""
}

// MessageOf returns the bare message of the first ActionError in err's
// chain, without code or action prefix. Other errors yield err.Error().
func MessageOf(err error) string {
	var actErr *ActionError
	if errors.As(err, &actErr) {
		return actErr.Message
	}
	return err.Error()
}
