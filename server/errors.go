package server

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classes a deployment attempt can hit.
// Callers switch on the kind to decide what to surface; nothing retries.
type ErrorKind string

const (
	ErrKindGeneration   ErrorKind = "generation"
	ErrKindPublish      ErrorKind = "publish"
	ErrKindSecret       ErrorKind = "secret"
	ErrKindPlatform     ErrorKind = "platform"
	ErrKindLedger       ErrorKind = "ledger"
	ErrKindWebhook      ErrorKind = "webhook"
	ErrKindPrecondition ErrorKind = "precondition"
)

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the ErrorKind of err, or an empty kind for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
