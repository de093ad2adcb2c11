// Package errkind classifies the errors tabkit surfaces to the user.
//
// Every failure that aborts a run belongs to one of three kinds:
//
//	ErrNotFound  an input file does not exist
//	ErrIO        a file or directory could not be read or written
//	ErrData      the input is malformed (missing column, short row, ...)
//
// Callers test the kind with errors.Is; DataError carries the location of
// the offending input.
package errkind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrIO       = errors.New("i/o error")
	ErrData     = errors.New("data error")
)

// DataError describes malformed input. Zero-valued location fields are
// omitted from the message.
type DataError struct {
	// Path is the file the data came from, if known.
	Path string
	// Line is the 1-based line number, 0 when not applicable.
	Line int
	// Column names the column involved, if any.
	Column string
	// Msg is the human readable description.
	Msg string
}

func (e *DataError) Error() string {
	var loc []string
	if e.Path != "" {
		loc = append(loc, e.Path)
	}
	if e.Line > 0 {
		loc = append(loc, fmt.Sprintf("line %d", e.Line))
	}
	if e.Column != "" {
		loc = append(loc, fmt.Sprintf("column %q", e.Column))
	}
	if len(loc) == 0 {
		return e.Msg
	}
	return strings.Join(loc, ", ") + ": " + e.Msg
}

// Unwrap makes errors.Is(err, ErrData) hold.
func (e *DataError) Unwrap() error { return ErrData }

// Data returns a *DataError with only a message.
func Data(format string, args ...any) error {
	return &DataError{Msg: fmt.Sprintf(format, args...)}
}

// NotFound wraps err (which may be nil) as a not-found error for path.
func NotFound(path string, err error) error {
	if err == nil {
		return fmt.Errorf("file %q: %w", path, ErrNotFound)
	}
	return fmt.Errorf("file %q: %w: %w", path, ErrNotFound, err)
}

// IO wraps err as an I/O error for the given operation on path.
func IO(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrIO, err)
}

// Kind returns a short label for the kind of err, or "error" when err
// belongs to none of the known kinds.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "error"
	}
}
