// Package errors provides podsh's error-wrapping helpers, layered on top
// of github.com/pkg/errors so internal diagnostics carry a stack trace
// while user-visible error text stays a plain sentence.
package errors

import (
	"github.com/pkg/errors"
)

// Wrap returns a new error wrapping err with a stack trace attached. If err
// is nil, Wrap returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// Wrapf returns a new error wrapping err with a stack trace and a formatted
// message. If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }
