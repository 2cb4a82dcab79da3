// Package rpcerr provides the wrapped-error helpers used outside the
// classifier. The classifier itself never returns a Go error (see
// classify package doc); everything else — transport I/O, registry
// lookups, config loading — wraps with github.com/pkg/errors so a cause
// chain survives across goroutine boundaries into the logs.
package rpcerr

import "github.com/pkg/errors"

// Wrap annotates err with msg, returning nil if err is nil.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message, returning nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error carrying a stack trace at the call site.
func New(msg string) error {
	return errors.New(msg)
}

// Newf creates a formatted error carrying a stack trace at the call site.
func Newf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

// Cause returns the underlying cause of err, unwrapping any rpcerr/pkg-errors wrapping.
func Cause(err error) error {
	return errors.Cause(err)
}
