package shell

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies shell errors.
type Kind int

const (
	// Other is any failure not otherwise classified, e.g. an OS spawn error.
	Other Kind = iota
	// NotFound is a missing file, command, target or previous directory.
	NotFound
	// InvalidInput is malformed redirect or pipe syntax or a bad builtin argument.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidInput:
		return "invalid input"
	default:
		return "other"
	}
}

// Error is the error type returned by builtins and the execution engine.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFoundf creates a NotFound error.
func NotFoundf(format string, a ...interface{}) error {
	return &Error{Kind: NotFound, Msg: fmt.Sprintf(format, a...)}
}

// InvalidInputf creates an InvalidInput error.
func InvalidInputf(format string, a ...interface{}) error {
	return &Error{Kind: InvalidInput, Msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches a kind to an existing error. Wrapping nil returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the kind of err. Errors that aren't *Error are classified by
// their cause.
func KindOf(err error) Kind {
	var shellErr *Error
	switch {
	case errors.As(err, &shellErr):
		return shellErr.Kind
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrInvalid):
		return InvalidInput
	default:
		return Other
	}
}
