package splitpatch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the fatal failures a split can run into.
type ErrorKind string

const (
	// KindUnreadableInput reports an input patch that cannot be opened or read.
	KindUnreadableInput ErrorKind = "unreadable_input"
	// KindDecoding reports a line that cannot be transcoded to UTF-8.
	KindDecoding ErrorKind = "decoding"
	// KindOutputIO reports a failure creating, writing or closing an output file.
	KindOutputIO ErrorKind = "output_io"
)

// Error is returned for every failure of a split run. None of them are
// retried; files written before the failure are left in place.
type Error struct {
	Kind    ErrorKind
	Message string
	// Path is the input or output file involved, when known.
	Path string
	// Line is the 1-based input line number, or 0 when not applicable.
	Line int
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

func outputError(path, action string, err error) *Error {
	return &Error{
		Kind:    KindOutputIO,
		Message: fmt.Sprintf("failed to %s %s", action, path),
		Path:    path,
		Err:     err,
	}
}
