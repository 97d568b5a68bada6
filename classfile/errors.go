package classfile

import (
	"errors"
	"fmt"
	"io"
)

// ErrFormat is matched by every *FormatError via errors.Is.
var ErrFormat = errors.New("class format error")

// FormatError reports malformed class file content: a bad magic number, an
// unknown tag, an index out of range, an inconsistent length, an invalid
// stack map frame, truncated bytecode or an unterminated signature.
type FormatError struct {
	Op  string
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	s := e.Msg
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErrorf(op, format string, args ...any) error {
	return &FormatError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// truncated turns a short read inside an already-read payload into a
// FormatError. Other errors pass through unchanged.
func truncated(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Op: op, Msg: "truncated data", Err: err}
	}
	return err
}
