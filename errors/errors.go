// Package errors wraps the standard errors toolkit and adds multi-error
// aggregation on top of go-multierror, so callers deal with one import.
package errors

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// New creates an error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf creates a formatted error. Use %w in the format string to wrap
// another error.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Wrap annotates err with a message, keeping err reachable through Unwrap.
// Returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf annotates err with a formatted message, keeping err reachable
// through Unwrap. Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Append merges errs into err, producing a single multi-error.
// The result is nil when every argument is nil, so the return value can be
// used directly as a function result.
func Append(err error, errs ...error) error {
	return multierror.Append(err, errs...).ErrorOrNil()
}

// Flatten collapses nested multi-errors into a single flat list.
// Errors that are not multi-errors pass through unchanged.
func Flatten(err error) error {
	return multierror.Flatten(err)
}

// Prefix adds a prefix to an error's message(s).
// If err is a multi-error, prefixes all underlying errors.
func Prefix(err error, prefix string) error {
	return multierror.Prefix(err, prefix)
}

// Combine merges a message into err. A nil err yields a plain error with
// the message; otherwise the result is a multi-error holding both.
func Combine(err error, msg string) error {
	if err == nil {
		return New(msg)
	}
	return Append(err, New(msg))
}

// Join combines errs into a single error using errors.Join semantics.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap returns the next error in err's chain, or nil if there is none.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Is reports whether err or any error in its chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type and, if
// found, stores it in target. Target must be a pointer to an error type.
func As(err error, target any) bool {
	return errors.As(err, target)
}
