// Package syncerr defines the error kinds shared by the converters and the
// platform workflows.
//
// Per-item failures (one resource, one file) are logged by the workflow and
// never surface here. What does surface ends the run:
//
//   - ErrPrecondition: something the whole run depends on is missing
//     (empty resource list, missing folder, failed bulk download).
//   - *IOError: an unrecoverable parse or filesystem error.
package syncerr

import (
	"errors"
	"fmt"
)

// ErrPrecondition marks a whole-run precondition failure.
var ErrPrecondition = errors.New("precondition failed")

// Preconditionf returns an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// IOError is an unrecoverable I/O failure.
type IOError struct {
	Op   string // "reading", "writing", "parsing", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IO wraps err in an *IOError. A nil err stays nil, and an err that already
// is an *IOError is returned unchanged.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIO reports whether err carries an *IOError.
func IsIO(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
