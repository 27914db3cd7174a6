package jmespath

import (
	"log/slog"
	"strings"
)

// ArgType is a set of accepted argument types. Values combine with | to form
// unions, e.g. TypeString|TypeArray.
type ArgType uint16

const (
	TypeNull ArgType = 1 << iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeExpref
	TypeArrayNumber // array whose elements are all numbers
	TypeArrayString // array whose elements are all strings

	// TypeAny accepts every value except expression references.
	TypeAny = TypeNull | TypeBool | TypeNumber | TypeString | TypeArray | TypeObject
)

var argTypeNames = []struct {
	name string
	typ  ArgType
}{
	{"any", TypeAny},
	{"null", TypeNull},
	{"boolean", TypeBool},
	{"number", TypeNumber},
	{"string", TypeString},
	{"array", TypeArray},
	{"object", TypeObject},
	{"expression", TypeExpref},
	{"array[number]", TypeArrayNumber},
	{"array[string]", TypeArrayString},
}

// String renders t as a |-separated union, e.g. "string|array".
func (t ArgType) String() string {
	var parts []string

	for _, n := range argTypeNames {
		if t&n.typ == n.typ {
			parts = append(parts, n.name)
			t &^= n.typ
		}
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// Accepts reports whether v satisfies t.
func (t ArgType) Accepts(v *Value) bool {
	var bit ArgType

	switch v.Kind() {
	case KindNull:
		bit = TypeNull
	case KindBool:
		bit = TypeBool
	case KindNumber:
		bit = TypeNumber
	case KindString:
		bit = TypeString
	case KindArray:
		bit = TypeArray
	case KindObject:
		bit = TypeObject
	case KindExpref:
		bit = TypeExpref
	}

	if t&bit != 0 {
		return true
	}

	if v.Kind() != KindArray {
		return false
	}

	return (t&TypeArrayNumber != 0 && allOf(v, KindNumber)) ||
		(t&TypeArrayString != 0 && allOf(v, KindString))
}

func allOf(v *Value, kind Kind) bool {
	for _, item := range v.items {
		if item.Kind() != kind {
			return false
		}
	}

	return true
}

// Signature declares the arguments a function accepts.
//
// Params lists one type per position. The last Optional positions may be
// omitted by the caller. A non-zero Variadic allows any number of further
// arguments of that type after Params.
type Signature struct {
	Params   []ArgType
	Optional int
	Variadic ArgType
}

// Sig is shorthand for a Signature with only required parameters.
func Sig(params ...ArgType) Signature { return Signature{Params: params} }

// valid reports whether the signature's arity description is coherent.
func (s Signature) valid() bool {
	return s.Optional >= 0 && s.Optional <= len(s.Params) &&
		(s.Optional == 0 || s.Variadic == 0)
}

// MinArgs returns the fewest arguments the signature accepts.
func (s Signature) MinArgs() int { return len(s.Params) - s.Optional }

// MaxArgs returns the most arguments the signature accepts, or -1 if it
// is variadic.
func (s Signature) MaxArgs() int {
	if s.Variadic != 0 {
		return -1
	}

	return len(s.Params)
}

// String renders the parameter list, e.g. "array, expression".
func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+1)

	for i, p := range s.Params {
		part := p.String()
		if i >= s.MinArgs() {
			part = "[" + part + "]"
		}

		parts = append(parts, part)
	}

	if s.Variadic != 0 {
		parts = append(parts, s.Variadic.String()+"...")
	}

	return strings.Join(parts, ", ")
}

// typeAt returns the type accepted at position i.
func (s Signature) typeAt(i int) ArgType {
	if i < len(s.Params) {
		return s.Params[i]
	}

	return s.Variadic
}

// check validates arity and argument types for a call to name.
func (s Signature) check(c *Context, name string, args []*Value) error {
	fn := slog.String("function", name)

	if !s.valid() {
		return c.fail(ErrInvalidArity, fn, slog.String("signature", s.String()))
	}

	if len(args) < s.MinArgs() {
		return c.fail(ErrNotEnoughArguments, fn,
			slog.Int("expected", s.MinArgs()),
			slog.Int("actual", len(args)),
		)
	}

	if most := s.MaxArgs(); most >= 0 && len(args) > most {
		return c.fail(ErrTooManyArguments, fn,
			slog.Int("expected", most),
			slog.Int("actual", len(args)),
		)
	}

	for i, arg := range args {
		if want := s.typeAt(i); !want.Accepts(arg) {
			return c.fail(ErrInvalidType, fn,
				slog.Int("position", i),
				slog.String("expected", want.String()),
				slog.String("actual", arg.Kind().String()),
			)
		}
	}

	return nil
}
