package lang

//go:generate go tool stringer --linecomment --type Class,TokenKind --output error_string.go

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Class categorizes an [Error] by the stage that produced it.
type Class int

const (
	ClassLex      Class = iota // lex
	ClassSyntax                // syntax
	ClassType                  // type
	ClassArity                 // arity
	ClassLookup                // lookup
	ClassInternal              // internal
	ClassIO                    // io
	ClassCanceled              // canceled
)

// Predefined errors (sentinel values).
var (
	ErrUnexpectedChar     = NewError(ClassLex, "unexpected character")
	ErrUnterminatedString = NewError(ClassLex, "unterminated string literal")
	ErrUnterminatedBlock  = NewError(ClassLex, "unterminated block")

	ErrEmptyStatement   = NewError(ClassSyntax, "empty statement")
	ErrUnknownStatement = NewError(ClassSyntax, "unrecognized statement")
	ErrInvalidFor       = NewError(ClassSyntax, "malformed for statement")
	ErrInvalidDef       = NewError(ClassSyntax, "malformed def statement")
	ErrInvalidExpr      = NewError(ClassSyntax, "malformed expression")
	ErrUnexpectedToken  = NewError(ClassSyntax, "unexpected token")
	ErrMismatchedCloser = NewError(ClassSyntax, "mismatched block closer")
	ErrMissingCloser    = NewError(ClassSyntax, "missing block closer")
	ErrOrphanBranch     = NewError(ClassSyntax, "elif or else without open if")
	ErrDuplicateElse    = NewError(ClassSyntax, "branch after else")

	ErrNotText         = NewError(ClassType, "value cannot be rendered as text")
	ErrNotList         = NewError(ClassType, "value is not a list")
	ErrNotMap          = NewError(ClassType, "value is not a map")
	ErrNotTemplate     = NewError(ClassType, "value is not a sub-template")
	ErrUnsupportedType = NewError(ClassType, "unsupported native type")

	ErrArgCount = NewError(ClassArity, "wrong number of arguments")

	ErrUndefined   = NewError(ClassLookup, "undefined key path")
	ErrInvalidPath = NewError(ClassLookup, "invalid key path")

	ErrEndMarker = NewError(ClassInternal, "end marker has no output")
	ErrBadNode   = NewError(ClassInternal, "unknown node kind")
	ErrMaxDepth  = NewError(ClassInternal, "maximum sub-template depth exceeded")

	ErrReadInput   = NewError(ClassIO, "failed to read input")
	ErrWriteOutput = NewError(ClassIO, "failed to write output")

	ErrCanceled = NewError(ClassCanceled, "render canceled")
)

// Error is the single error type returned by this package.
// It carries a [Class], an optional template name and 1-based source line,
// an optional wrapped cause, and attributes for structured logging.
type Error struct {
	msg   string
	name  string
	err   error
	attrs []slog.Attr
	line  int
	class Class
}

// NewError creates a new Error of the given class.
func NewError(class Class, msg string) *Error {
	return &Error{class: class, msg: msg}
}

// WrapError converts err into an *Error.
// An err that already is (or wraps) an *Error is returned as that *Error.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{class: ClassInternal, err: err}
}

// Error implements the error interface.
//
// The message is composed of the available fields in the form:
//
//	name:line: msg: cause
func (e *Error) Error() string {
	var sb strings.Builder

	if e.name != "" {
		sb.WriteString(e.name)
		sb.WriteByte(':')
	}

	if e.line > 0 {
		if e.name == "" {
			sb.WriteString("line ")
		}

		sb.WriteString(strconv.Itoa(e.line))
		sb.WriteByte(':')
	}

	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}

	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	sb.WriteString(strings.Join(part, ": "))

	return sb.String()
}

// Class returns the error's class.
func (e *Error) Class() Class { return e.class }

// Line returns the 1-based template line, or 0 when unknown.
func (e *Error) Line() int { return e.line }

// Name returns the template name, if one was attached.
func (e *Error) Name() string { return e.name }

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same class and message.
// Every error derived from a sentinel with [Error.With], [Error.Wrap] or
// [Error.At] therefore matches that sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.class == e.class && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)
	attrs = append(attrs, slog.String("class", e.class.String()))

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.name != "" {
		attrs = append(attrs, slog.String("template", e.name))
	}

	if e.line > 0 {
		attrs = append(attrs, slog.Int("line", e.line))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With adds attributes to the error for structured logging.
// The receiver is not modified.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return &c
}

// At returns the error annotated with the given 1-based source line.
// A line that is already set is never replaced.
func (e *Error) At(line int) *Error {
	if e.line > 0 || line <= 0 {
		return e
	}

	c := *e
	c.line = line

	return &c
}

// Named returns the error annotated with a template name.
// A name that is already set is never replaced.
func (e *Error) Named(name string) *Error {
	if e.name != "" || name == "" {
		return e
	}

	c := *e
	c.name = name

	return &c
}

// annotate attaches line to err if err does not already carry one.
func annotate(err error, line int) error {
	if err == nil {
		return nil
	}

	return WrapError(err).At(line)
}
