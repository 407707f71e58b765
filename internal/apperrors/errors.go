// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindResourceExhausted Kind = "resource_exhausted"
	KindInvalidTransition Kind = "invalid_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindExternalService   Kind = "external_service"
	KindPersistence       Kind = "persistence"
	KindInternal          Kind = "internal"
)

// Error is the structured error returned by the service layer.
type Error struct {
	Kind      Kind
	Message   string
	Fields    map[string]string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports missing or malformed input. fields maps a field name to
// what is wrong with it.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(err error, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Err: err}
}

func ResourceExhausted(format string, args ...any) *Error {
	return &Error{Kind: KindResourceExhausted, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// ExternalService wraps a failed call to the mail service, message broker or
// any other collaborator outside the store. Timeouts are retryable.
func ExternalService(err error, format string, args ...any) *Error {
	return &Error{
		Kind:      KindExternalService,
		Message:   fmt.Sprintf(format, args...),
		Err:       err,
		Retryable: isTimeout(err),
	}
}

// Persistence wraps a store failure. A deadline hit while talking to the store
// is reported as a retryable external-service error instead.
func Persistence(err error, format string, args ...any) *Error {
	if isTimeout(err) {
		return ExternalService(err, format, args...)
	}
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// FieldsOf returns the field-level validation detail attached to err, if any.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
