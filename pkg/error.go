package pkg

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Error represents a chain of errors, innermost first.
//
// The sentinels below are compared with errors.Is, which walks the chain
// through [Error.Unwrap].
type Error []error

// ErrReadInput is returned when reading an input document fails.
//
// This error should be wrapped with the underlying I/O error.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrDecodeInput is returned when an input document is neither valid JSON
// nor valid YAML for the selected input format.
var ErrDecodeInput = MakeErrorf("failed to decode input")

// ErrInvalidFormat is returned when an unknown input or output format is
// requested.
//
// This error should be wrapped with the rejected format name.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrNoInput is returned when a command requires a document and none was
// given.
var ErrNoInput = MakeErrorf("no input document")

// MakeError constructs an Error from the given errors.
// The first argument is the innermost error in the chain.
// Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages of the chain with ": ", innermost first.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap returns a copy of the receiver with err appended.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clip(e), err...)
}

// Wrapf returns a copy of the receiver with a formatted error appended.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(slices.Clip(e), fmt.Errorf(format, args...))
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's, so that a wrapped sentinel still matches itself.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if !sameError(e[i], t[i]) {
			return false
		}
	}

	return true
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)

	return ta == tb && ta.Comparable() && a == b
}

// Unwrap returns the errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors recursively unwraps an error chain and returns every error in
// it, starting from the innermost.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
