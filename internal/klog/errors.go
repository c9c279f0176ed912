package klog

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, klog.ErrInvalidTime) to classify an error.
var (
	ErrSyntax       = errors.New("syntax error")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidTime  = errors.New("invalid time")
	ErrInvalidRange = errors.New("invalid range")
	ErrAlreadyOpen  = errors.New("record already has an open range")
	ErrNoOpenEntry  = errors.New("record has no open range")
	ErrIndentation  = errors.New("invalid indentation")
)

// Error carries the kind of a failure plus the data needed to render a
// precise diagnostic. Line and Column are 1-based and zero when unknown.
type Error struct {
	Kind    error
	Message string
	Input   string
	Line    int
	Column  int
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Input != "" {
		msg += fmt.Sprintf(" (%q)", e.Input)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d, column %d", e.Line, e.Column)
	}
	return msg
}

// Is matches the error against its kind sentinel.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// At returns a copy of the error positioned at line and column.
func (e *Error) At(line, column int) *Error {
	c := *e
	c.Line, c.Column = line, column
	return &c
}

func newError(kind error, input, format string, args ...any) *Error {
	return &Error{Kind: kind, Input: input, Message: fmt.Sprintf(format, args...)}
}

// NewError builds a positioned error of the given kind.
func NewError(kind error, input string, line, column int, format string, args ...any) *Error {
	e := newError(kind, input, format, args...)
	e.Line, e.Column = line, column
	return e
}
