// Package errs defines the engine's recoverable error taxonomy.
//
// Every error here describes a rejected request that left game state
// untouched. The tool dispatcher reports them back to the model as retryable
// results instead of failing the turn.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a recoverable engine error.
type Kind string

const (
	KindValidation       Kind = "ValidationError"
	KindInvalidOperation Kind = "InvalidOperation"
	KindNotFound         Kind = "NotFound"
	KindDuplicateEntity  Kind = "DuplicateEntity"
	KindWrongPath        Kind = "WrongPath"
)

// Sentinels for errors.Is matching against a Kind.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrDuplicateEntity  = &Error{Kind: KindDuplicateEntity}
	ErrWrongPath        = &Error{Kind: KindWrongPath}
)

// Error is a classified engine error. Subject names the offending field or
// entity.
type Error struct {
	Kind    Kind
	Subject string
	Message string
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Subject, e.Message)
}

// Is matches any *Error of the same Kind, so the package sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Subject == "" || t.Subject == e.Subject)
}

func newError(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a malformed or out-of-range field.
func Validation(field, format string, args ...any) error {
	return newError(KindValidation, field, format, args...)
}

// InvalidOperation reports an operation on the wrong character variant.
func InvalidOperation(subject, format string, args ...any) error {
	return newError(KindInvalidOperation, subject, format, args...)
}

// NotFound reports an unknown adversary, countdown or target.
func NotFound(subject, format string, args ...any) error {
	return newError(KindNotFound, subject, format, args...)
}

// Duplicate reports an id or name collision.
func Duplicate(subject, format string, args ...any) error {
	return newError(KindDuplicateEntity, subject, format, args...)
}

// WrongPath reports an operation that must go through a dedicated protocol.
func WrongPath(subject, format string, args ...any) error {
	return newError(KindWrongPath, subject, format, args...)
}

// KindOf returns the Kind of err, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRecoverable reports whether err belongs to the taxonomy.
func IsRecoverable(err error) bool {
	return KindOf(err) != ""
}
