package jmespath

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Class groups errors by the phase that produced them.
type Class uint8

const (
	ClassNone    Class = iota // error
	ClassLex                  // lex
	ClassParse                // parse
	ClassRuntime              // runtime
)

func (c Class) String() string {
	switch c {
	case ClassLex:
		return "lex"
	case ClassParse:
		return "parse"
	case ClassRuntime:
		return "runtime"
	default:
		return "error"
	}
}

// Predefined errors (sentinel values).
var (
	ErrUnexpectedCharacter = newError(ClassLex, "unexpected character")
	ErrUnterminatedLiteral = newError(ClassLex, "unterminated literal")
	ErrInvalidLiteral      = newError(ClassLex, "invalid literal")

	ErrUnexpectedToken    = newError(ClassParse, "unexpected token")
	ErrInvalidSliceStep   = newError(ClassParse, "invalid slice step")
	ErrQuotedFunctionName = newError(ClassParse, "quoted identifier used as function name")

	ErrInvalidType        = newError(ClassRuntime, "invalid type")
	ErrUnknownFunction    = newError(ClassRuntime, "unknown function")
	ErrNotEnoughArguments = newError(ClassRuntime, "not enough arguments")
	ErrTooManyArguments   = newError(ClassRuntime, "too many arguments")
	ErrInvalidArity       = newError(ClassRuntime, "invalid arity")
	ErrInvalidValue       = newError(ClassRuntime, "invalid value")

	ErrInvalidDocument = NewError("invalid document")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors raised while compiling or searching carry the expression text and
// the byte offset where the problem was found. They match their sentinel
// with [errors.Is].
type Error struct {
	base   *Error // sentinel this error derives from
	err    error  // wrapped error (for errors.Unwrap)
	msg    string
	expr   string
	attrs  []slog.Attr // attributes for structured logging
	offset int
	class  Class
	placed bool // expr and offset are set
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newError(class Class, msg string) *Error {
	return &Error{msg: msg, class: class}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// Errors placed in an expression render as
// "<class> error at offset <n>: <msg>[: <err>] [key=value ...]".
func (e *Error) Error() string {
	var sb strings.Builder

	if e.placed {
		sb.WriteString(e.class.String())
		sb.WriteString(" error at offset ")
		sb.WriteString(strconv.Itoa(e.offset))
		sb.WriteString(": ")
	}

	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	sb.WriteString(strings.Join(part, ": "))

	for _, attr := range e.attrs {
		sb.WriteByte(' ')
		sb.WriteString(attr.Key)
		sb.WriteByte('=')
		sb.WriteString(attr.Value.String())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is e or the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t == e || (e.base != nil && t == e.base)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.placed {
		attrs = append(attrs,
			slog.String("class", e.class.String()),
			slog.String("expression", e.expr),
			slog.Int("offset", e.offset),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Class returns the phase that produced the error.
func (e *Error) Class() Class { return e.class }

// Expression returns the expression text the error was raised against.
func (e *Error) Expression() string { return e.expr }

// Offset returns the byte offset of the error in the expression text.
func (e *Error) Offset() int { return e.offset }

// derive copies e, remembering the sentinel it came from.
func (e *Error) derive() *Error {
	d := *e
	if d.base == nil {
		d.base = e
	}

	return &d
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	d := e.derive()
	d.attrs = newAttrs

	return d
}

// At places the error at offset in expr.
func (e *Error) At(expr string, offset int) *Error {
	d := e.derive()
	d.expr = expr
	d.offset = offset
	d.placed = true

	return d
}

// Snippet renders the expression with a caret under the offending offset.
// It returns "" for errors not placed in an expression.
//
//	foo.[bar
//	        ^
func (e *Error) Snippet() string {
	if !e.placed {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(e.expr)
	sb.WriteByte('\n')

	col := 0
	for i := range e.expr {
		if i >= e.offset {
			break
		}

		col++
	}

	if e.offset > len(e.expr) {
		col = len([]rune(e.expr))
	}

	sb.WriteString(strings.Repeat(" ", col))
	sb.WriteString("^\n")

	return sb.String()
}

// IsLexError reports whether err arose while tokenizing an expression.
func IsLexError(err error) bool { return classOf(err) == ClassLex }

// IsParseError reports whether err arose while parsing an expression.
func IsParseError(err error) bool { return classOf(err) == ClassParse }

// IsRuntimeError reports whether err arose while evaluating an expression.
func IsRuntimeError(err error) bool { return classOf(err) == ClassRuntime }

func classOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.class
	}

	return ClassNone
}
