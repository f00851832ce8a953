package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service matches exactly one of them
// with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrStoreFailure = errors.New("store failure")
)

// Error is the error type returned by services.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == ErrStoreFailure {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func notFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(msg string, err error) error {
	return &Error{Kind: ErrStoreFailure, Message: msg, Err: err}
}

// passOrWrap returns err unchanged if it already is a service error, and wraps
// it as a store failure otherwise.
func passOrWrap(msg string, err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return storeFailure(msg, err)
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "internal error"
}
