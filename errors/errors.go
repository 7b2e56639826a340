// Package errors provides a const-friendly string error type and thin
// wrappers over the standard errors package so callers only need one import.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins a sentinel's message to the message of its cause.
const Separator = ": "

// Error is a string based error allowing sentinel errors to be declared as constants.
type Error string

func (e Error) Error() string {
	return string(e)
}

// Is reports whether target carries the same message, either directly or as the
// head of a wrapped message.
func (e Error) Is(target error) bool {
	if target == nil {
		return false
	}
	msg := target.Error()
	return msg == string(e) || strings.HasPrefix(msg, string(e)+Separator)
}

// Wrap attaches err as the cause of e.
func (e Error) Wrap(err error) error {
	return wrappedError{msg: string(e), cause: err}
}

// Wrapf attaches a formatted detail message as the cause of e.
func (e Error) Wrapf(format string, args ...any) error {
	return wrappedError{msg: string(e), cause: fmt.Errorf(format, args...)}
}

type wrappedError struct {
	msg   string
	cause error
}

func (w wrappedError) Error() string {
	if w.cause == nil {
		return w.msg
	}
	return w.msg + Separator + w.cause.Error()
}

func (w wrappedError) Is(target error) bool {
	return Error(w.msg).Is(target)
}

func (w wrappedError) Unwrap() error {
	return w.cause
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Join is errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Flatten returns the leaf errors of err, expanding any errors produced by Join
// at every depth. A nil err yields nil.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}

	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, Flatten(e)...)
	}
	return out
}
