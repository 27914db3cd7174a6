package jmespath

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"field", "foo", `Field "foo"`},
		{"current", "@", `Current`},
		{"subexpr", "foo.bar", `Subexpr(Field "foo", Field "bar")`},
		{"quoted field", `"with space"`, `Field "with space"`},
		{"index", "foo[0]", `Subexpr(Field "foo", Index 0)`},
		{"bare index", "[-1]", `Subexpr(Identity, Index -1)`},
		{"slice projects", "foo[1:3]", `Projection [*](Subexpr(Field "foo", Slice [1:3:1]), Identity)`},
		{"slice defaults", "[::-1]", `Projection [*](Subexpr(Identity, Slice [::-1]), Identity)`},
		{"wildcard index", "foo[*].bar", `Projection [*](Field "foo", Field "bar")`},
		{"wildcard values", "*.a", `Projection *(Identity, Field "a")`},
		{"dot star", "foo.*", `Subexpr(Field "foo", Projection *(Identity, Identity))`},
		{"flatten", "foo[]", `Projection [](Flatten(Field "foo"), Identity)`},
		{"flatten chain", "foo[].bar[]",
			`Projection [](Flatten(Projection [](Flatten(Field "foo"), Field "bar")), Identity)`},
		{"filter", "foo[?a > `1`].b",
			`Projection [?](Field "foo", Comparison >(Field "a", Literal 1), Field "b")`},
		{"projection stops at pipe", "foo[*].bar | baz",
			`Pipe(Projection [*](Field "foo", Field "bar"), Field "baz")`},
		{"projection stops at comparison", "foo[*] == bar",
			`Comparison ==(Projection [*](Field "foo", Identity), Field "bar")`},
		{"projection continues into index", "foo[*][0]",
			`Projection [*](Field "foo", Subexpr(Identity, Index 0))`},
		{"or binds looser than and", "a || b && c", `Or(Field "a", And(Field "b", Field "c"))`},
		{"not binds tighter than comparison", "!a == b", `Comparison ==(Not(Field "a"), Field "b")`},
		{"parens", "!(a == b)", `Not(Comparison ==(Field "a", Field "b"))`},
		{"not takes the postfix chain", "!a.b", `Not(Subexpr(Field "a", Field "b"))`},
		{"not stops at comparison", "!a.b == c",
			`Comparison ==(Not(Subexpr(Field "a", Field "b")), Field "c")`},
		{"not stops at and", "!a && b", `And(Not(Field "a"), Field "b")`},
		{"not in filter", "foo[?!a.b]",
			`Projection [?](Field "foo", Not(Subexpr(Field "a", Field "b")), Identity)`},
		{"pipe is loosest", "a || b | c", `Pipe(Or(Field "a", Field "b"), Field "c")`},
		{"multi list", "[a, b.c]", `MultiList(Field "a", Subexpr(Field "b", Field "c"))`},
		{"dot multi list", "foo.[a, b]", `Subexpr(Field "foo", MultiList(Field "a", Field "b"))`},
		{"multi hash", `{x: a, "y z": b}`, `MultiHash {x, y z}(Field "a", Field "b")`},
		{"function", "sort_by(@, &age)", `Function sort_by(Current, Expref(Field "age"))`},
		{"no-arg function", "f()", `Function f`},
		{"raw string", "'it'", `Literal "it"`},
		{"literal", "`[1, true]`", `Literal [1,true]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			if got := root.String(); got != tt.want {
				t.Errorf("Parse(%q)\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		offset   int
	}{
		{"empty", "", ErrUnexpectedToken, 0},
		{"trailing token", "foo bar", ErrUnexpectedToken, 4},
		{"dangling dot", "foo.", ErrUnexpectedToken, 4},
		{"dot number", "foo.1", ErrUnexpectedToken, 4},
		{"unclosed bracket", "foo[0", ErrUnexpectedToken, 5},
		{"zero step", "foo[::0]", ErrInvalidSliceStep, 3},
		{"too many colons", "foo[1:2:3:4]", ErrUnexpectedToken, 9},
		{"quoted function", `"f"(a)`, ErrQuotedFunctionName, 0},
		{"trailing comma", "[a, ]", ErrUnexpectedToken, 4},
		{"hash key", "{1: a}", ErrUnexpectedToken, 1},
		{"unclosed filter", "foo[?a", ErrUnexpectedToken, 6},
		{"bad projection continuation", "foo[*]bar", ErrUnexpectedToken, 6},
		{"number expression", "1", ErrUnexpectedToken, 0},
		{"lex error surfaces", "foo ^", ErrUnexpectedCharacter, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.input, err, tt.sentinel)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error is %T, want *Error", err)
			}

			if e.Offset() != tt.offset {
				t.Errorf("offset = %d, want %d", e.Offset(), tt.offset)
			}
		})
	}
}

func TestParse_ErrorClass(t *testing.T) {
	_, err := Parse("foo[")
	if !IsParseError(err) || IsLexError(err) || IsRuntimeError(err) {
		t.Errorf("expected parse error class, got %v", err)
	}
}

func TestNode_Print(t *testing.T) {
	root, err := Parse("a[?b == `1`].c")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var sb strings.Builder
	if err := root.Print(&sb, 2); err != nil {
		t.Fatalf("Print() error: %v", err)
	}

	want := strings.Join([]string{
		"Projection [?] @1",
		`  left: Field "a" @0`,
		"  predicate: Comparison == @5",
		`    left: Field "b" @3`,
		"    right: Literal 1 @8",
		`  right: Field "c" @13`,
		"",
	}, "\n")

	if got := sb.String(); got != want {
		t.Errorf("Print()\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNode_Walk(t *testing.T) {
	root, err := Parse("{a: foo(x), b: [y, z]}")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var fields []string

	root.Walk(func(n *Node) bool {
		if n.Kind == NodeField {
			fields = append(fields, n.Name)
		}

		return n.Kind != NodeFunction
	})

	if got := strings.Join(fields, ","); got != "y,z" {
		t.Errorf("Walk() fields = %s, want y,z", got)
	}
}
