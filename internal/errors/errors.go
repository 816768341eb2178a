// Package errors defines the error kinds reported by the image editor.
//
// Every failure that reaches a tool caller is an *Error carrying one of the
// Kind values below. Errors are compared by kind, so
//
//	errors.Is(err, apperrors.ErrNotFound)
//
// holds for any *Error of KindNotFound regardless of its message.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorises an error.
type Kind string

const (
	// KindConfiguration indicates a bad or missing startup setting. Fatal at startup.
	KindConfiguration Kind = "configuration"

	// KindSandboxViolation indicates a path that would escape the image root.
	KindSandboxViolation Kind = "sandbox_violation"

	// KindNotFound indicates a confined path that does not exist.
	KindNotFound Kind = "not_found"

	// KindValidation indicates a parameter outside its declared domain.
	KindValidation Kind = "validation"

	// KindUnsupportedFormat indicates an image format the operation cannot handle.
	KindUnsupportedFormat Kind = "unsupported_format"

	// KindEngineFailure indicates the pixel-processing engine failed.
	KindEngineFailure Kind = "engine_failure"

	// KindUnknown is reported for errors that carry no kind.
	KindUnknown Kind = "unknown"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Sentinels for errors.Is comparisons.
var (
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrSandboxViolation  = &Error{Kind: KindSandboxViolation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrEngineFailure     = &Error{Kind: KindEngineFailure}
)

// Error is a categorised error.
type Error struct {
	// Kind categorises the error
	Kind Kind

	// Message is the human-readable description shown to the caller
	Message string

	// Cause is the underlying error, if any
	Cause error

	// Details holds structured context for logging
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetail attaches a key/value pair and returns the error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error of the given kind around cause.
// A nil cause yields nil.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	if cause == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Configuration is shorthand for New(KindConfiguration, ...).
func Configuration(format string, args ...interface{}) *Error {
	return New(KindConfiguration, format, args...)
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}
