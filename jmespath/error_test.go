package jmespath

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", ErrInvalidType, "invalid type"},
		{"placed", ErrUnexpectedToken.At("foo.", 4), "parse error at offset 4: unexpected token"},
		{
			"attrs",
			ErrUnknownFunction.At("nope()", 0).With(slog.String("function", "nope")),
			"runtime error at offset 0: unknown function function=nope",
		},
		{"wrapped", ErrInvalidDocument.Wrap(io.ErrUnexpectedEOF), "invalid document: unexpected EOF"},
		{"plain", WrapError(io.EOF), "EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	derived := ErrInvalidType.At("x", 1).With(slog.Int("position", 0))

	if !errors.Is(derived, ErrInvalidType) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(derived, ErrInvalidValue) {
		t.Error("derived error matches an unrelated sentinel")
	}

	if errors.Is(ErrInvalidType, derived) {
		t.Error("sentinel matches a derived error")
	}

	wrapped := ErrInvalidValue.Wrap(io.ErrClosedPipe)
	if !errors.Is(wrapped, io.ErrClosedPipe) {
		t.Error("wrapped cause not reachable")
	}

	if WrapError(derived) != derived {
		t.Error("WrapError re-wrapped an *Error")
	}
}

func TestError_Immutable(t *testing.T) {
	base := ErrInvalidType.With(slog.String("a", "1"))
	_ = base.With(slog.String("b", "2"))

	if got := base.Error(); got != "invalid type a=1" {
		t.Errorf("With mutated receiver: %q", got)
	}

	if ErrInvalidType.Error() != "invalid type" {
		t.Error("sentinel mutated")
	}
}

func TestError_Snippet(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"middle", ErrUnexpectedToken.At("foo.[bar", 4), "foo.[bar\n    ^\n"},
		{"end", ErrUnexpectedToken.At("foo.", 4), "foo.\n    ^\n"},
		{"multibyte", ErrUnexpectedCharacter.At("'é' ^", 5), "'é' ^\n    ^\n"},
		{"unplaced", ErrInvalidType, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Snippet(); got != tt.want {
				t.Errorf("Snippet() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_LogValue(t *testing.T) {
	_, err := Compile("foo[")

	var sb strings.Builder

	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}))
	logger.Error("compile failed", slog.Any("err", err))

	got := sb.String()
	for _, want := range []string{
		"err.error=\"unexpected token\"",
		"err.class=parse",
		"err.expression=foo[",
		"err.offset=4",
		"err.found=\"end of expression\"",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log output missing %s:\n%s", want, got)
		}
	}
}

func TestError_Class(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{ErrUnexpectedCharacter, ClassLex},
		{ErrInvalidSliceStep, ClassParse},
		{ErrTooManyArguments, ClassRuntime},
		{ErrInvalidDocument, ClassNone},
		{io.EOF, ClassNone},
	}

	for _, tt := range tests {
		if got := classOf(tt.err); got != tt.want {
			t.Errorf("classOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
