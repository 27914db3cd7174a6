package jmespath

import (
	"errors"
	"testing"
)

// search compiles expr and searches the JSON document doc.
func search(t *testing.T, expr, doc string) (*Value, error) {
	t.Helper()

	data, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ParseJSON(%s) error: %v", doc, err)
	}

	q, err := Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", expr, err)
	}

	return q.Search(data)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		doc  string
		want string
	}{
		{"identity", "@", `{"a":[1,2]}`, `{"a":[1,2]}`},
		{"nested field", "foo.bar.baz", `{"foo":{"bar":{"baz":true}}}`, `true`},
		{"missing on object", "foo.bar.baz", `{}`, `null`},
		{"missing on array", "foo.bar.baz", `[]`, `null`},
		{"missing on null", "foo.bar.baz", `null`, `null`},
		{"missing on string", "foo.bar.baz", `""`, `null`},
		{"field of array", "a.b", `{"a":[{"b":1}]}`, `null`},
		{"index", "a[1]", `{"a":[1,2,3]}`, `2`},
		{"negative index", "a[-1]", `{"a":[1,2,3]}`, `3`},
		{"index out of range", "a[5]", `{"a":[1,2,3]}`, `null`},
		{"index of object", "a[0]", `{"a":{"0":1}}`, `null`},
		{"slice", "[1:3]", `[0,1,2,3,4]`, `[1,2]`},
		{"slice negative", "[-2:]", `[0,1,2,3,4]`, `[3,4]`},
		{"slice step", "[::2]", `[0,1,2,3,4]`, `[0,2,4]`},
		{"slice reverse", "[::-1]", `[0,1,2,3,4]`, `[4,3,2,1,0]`},
		{"slice reverse bounded", "[3:0:-1]", `[0,1,2,3,4]`, `[3,2,1]`},
		{"slice clamps", "[-10:10]", `[0,1]`, `[0,1]`},
		{"slice of object", "[0:1]", `{"a":1}`, `null`},
		{"slice projects", "[0:2].a", `[{"a":1},{"b":2},{"a":3}]`, `[1]`},
		{"projection drops nulls", "foo[*].bar", `{"foo":[{"bar":1},{"x":2},{"bar":3}]}`, `[1,3]`},
		{"projection keeps falsy", "[*].v", `[{"v":false},{"v":0},{"v":""},{"v":[]},{"v":{}}]`,
			`[false,0,"",[],{}]`},
		{"projection of object", "foo[*]", `{"foo":{"a":1}}`, `null`},
		{"projection of null", "foo[*].a", `{}`, `null`},
		{"values projection", "*.a", `{"x":{"a":1},"y":{"b":2},"z":{"a":3}}`, `[1,3]`},
		{"values projection of array", "*", `[1,2]`, `null`},
		{"nested projection", "a[*].b[*].c", `{"a":[{"b":[{"c":1},{"c":2}]},{"b":[{"c":3}]}]}`,
			`[[1,2],[3]]`},
		{"flatten", "a[]", `{"a":[[1,2],3,[4,[5]]]}`, `[1,2,3,4,[5]]`},
		{"flatten projection", "a[].b", `{"a":[[{"b":1}],{"b":2},[{"c":3}]]}`, `[1,2]`},
		{"flatten twice", "a[][]", `{"a":[[[1]],[[2,3]]]}`, `[1,2,3]`},
		{"flatten of object", "a[]", `{"a":{"b":1}}`, `null`},
		{"flatten keeps scalars in place", "foo[]", `{"foo":[1,[2,3],"x",[4]]}`, `[1,2,3,"x",4]`},
		{"filter", "a[?v > `1`].n", `{"a":[{"v":1,"n":"x"},{"v":2,"n":"y"},{"v":3,"n":"z"}]}`,
			`["y","z"]`},
		{"filter truthiness", "[?@]", `[0,false,null,"",[],{},"x",[1]]`, `[0,"x",[1]]`},
		{"filter equality", "[?a == b]", `[{"a":[1],"b":[1]},{"a":1,"b":2}]`, `[{"a":[1],"b":[1]}]`},
		{"filter of object", "a[?b]", `{"a":{"b":true}}`, `null`},
		{"pipe stops projection", "a[*].b | [0]", `{"a":[{"b":1},{"b":2}]}`, `1`},
		{"index inside projection", "a[*].b[0]", `{"a":[{"b":[1,2]},{"b":[3]}]}`, `[1,3]`},
		{"pipe continues past null", "missing | not_null(@, `0`)", `{}`, `0`},
		{"or returns value", "a || b", `{"a":"","b":"x"}`, `"x"`},
		{"or short circuits", "a || b", `{"a":[1],"b":"x"}`, `[1]`},
		{"and returns value", "a && b", `{"a":0,"b":"y"}`, `"y"`},
		{"and returns falsy left", "a && b", `{"a":{},"b":"y"}`, `{}`},
		{"not", "!a", `{"a":""}`, `true`},
		{"not of zero", "!a", `{"a":0}`, `false`},
		{"not takes the postfix chain", "!a.b", `{"a":{"b":true}}`, `false`},
		{"not of missing member", "!a.b", `{"a":{}}`, `true`},
		{"not before comparison", "!a.b == `false`", `{"a":{"b":true}}`, `true`},
		{"negated member filter", "people[?!address.city].name",
			`{"people":[{"name":"a","address":{"city":"x"}},{"name":"b","address":{}}]}`, `["b"]`},
		{"structural equality", "a == b", `{"a":[1,2],"b":[1,2]}`, `true`},
		{"object equality", "a == b", `{"a":{"x":1,"y":2},"b":{"y":2,"x":1}}`, `true`},
		{"inequality", "a != b", `{"a":1,"b":"1"}`, `true`},
		{"string ordering is false", "a < b", `{"a":"10","b":2}`, `false`},
		{"strings do not order", "a < b", `{"a":"a","b":"b"}`, `false`},
		{"number ordering", "a <= b", `{"a":2,"b":2}`, `true`},
		{"greater", "a > b", `{"a":3,"b":2}`, `true`},
		{"null ordering is false", "a >= b", `{"a":null,"b":null}`, `false`},
		{"literal ignores input", "`{\"a\":1}`", `null`, `{"a":1}`},
		{"raw string", "'x'", `null`, `"x"`},
		{"multi list", "[a, b, c]", `{"a":1,"b":null}`, `[1,null,null]`},
		{"multi list on null", "[a]", `null`, `null`},
		{"multi hash", "{x: a, y: b}", `{"a":1}`, `{"x":1,"y":null}`},
		{"multi hash on null", "foo.{x: a}", `{}`, `null`},
		{"multi select in projection", "a[*].[b, c]", `{"a":[{"b":1},{"c":2}]}`, `[[1,null],[null,2]]`},
		{"quoted field", `"a b"`, `{"a b":1}`, `1`},
		{"current in filter", "a[?@ == `2`]", `{"a":[1,2,3]}`, `[2]`},
		{"parenthesized", "(a || b).c", `{"b":{"c":1}}`, `1`},
		{"expref is value", "map(&a, @)", `[{"a":1},{}]`, `[1,null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := search(t, tt.expr, tt.doc)
			if err != nil {
				t.Fatalf("Search(%q) error: %v", tt.expr, err)
			}

			if got.String() != tt.want {
				t.Errorf("Search(%q) = %s, want %s", tt.expr, got, tt.want)
			}
		})
	}
}

func TestContext_Apply(t *testing.T) {
	node, err := Parse("b")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	c := NewContext("sort_by(@, &b)", Builtins())
	c.Offset = 11

	got, err := c.Apply(newExpref(node, nil), MustValue(map[string]any{"b": 2.0}))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if got.String() != "2" {
		t.Errorf("Apply() = %s, want 2", got)
	}

	if c.Offset != 11 || c.Registry == nil {
		t.Errorf("Apply() changed caller: offset %d, registry %v", c.Offset, c.Registry)
	}

	if _, err := c.Apply(MustValue("b"), null); !errors.Is(err, ErrInvalidType) {
		t.Errorf("Apply(string) error = %v, want %v", err, ErrInvalidType)
	}
}

func TestEvaluate_Identity(t *testing.T) {
	docs := []any{nil, true, 1.5, "s", []any{1.0}, map[string]any{"k": "v"}}

	q := MustCompile("@")

	for _, doc := range docs {
		want := MustValue(doc)

		got, err := q.Search(want)
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}

		if got != want {
			t.Errorf("Search(%s) returned a different value %s", want, got)
		}
	}
}

func TestEvaluate_RuntimeErrors(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		doc      string
		sentinel error
		offset   int
	}{
		{"length of number", "length(`1`)", `null`, ErrInvalidType, 0},
		{"unknown function", "a.nope(@)", `{"a":{}}`, ErrUnknownFunction, 2},
		{"not enough arguments", "abs()", `null`, ErrNotEnoughArguments, 0},
		{"too many arguments", "abs(`1`, `2`)", `null`, ErrTooManyArguments, 0},
		{"error inside projection", "[*].abs(@)", `[1,"x"]`, ErrInvalidType, 4},
		{"mixed sort keys", "sort_by(@, &age)", `[{"age":1},{"age":"2"}]`, ErrInvalidType, 0},
		{"expref where value expected", "abs(&a)", `null`, ErrInvalidType, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := search(t, tt.expr, tt.doc)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Search(%q) = %v, want %v", tt.expr, err, tt.sentinel)
			}

			if !IsRuntimeError(err) {
				t.Errorf("expected runtime error, got %v", err)
			}

			var e *Error
			if errors.As(err, &e) && e.Offset() != tt.offset {
				t.Errorf("offset = %d, want %d", e.Offset(), tt.offset)
			}
		})
	}
}
