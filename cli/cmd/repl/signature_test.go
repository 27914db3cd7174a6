package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/jmes/jmespath"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"first arg", "length(", 7, functionCall{name: "length", inCall: true}},
		{"second arg", "sort_by(people, &a", 18, functionCall{name: "sort_by", argIndex: 1, inCall: true}},
		{"nested call", "max(min(a), b", 13, functionCall{name: "max", argIndex: 1, inCall: true}},
		{"inner call", "max(min(a, b", 12, functionCall{name: "min", argIndex: 1, inCall: true}},
		{"commas in list", "length([1, 2], ", 15, functionCall{name: "length", argIndex: 1, inCall: true}},
		{"commas in hash", "merge({a: b, c: d}", 18, functionCall{name: "merge", inCall: true}},
		{"after close", "abs(x) ", 7, functionCall{}},
		{"not a call", "foo.bar", 7, functionCall{}},
		{"bare paren", "(a", 2, functionCall{}},
		{"cursor before open", "abs(x)", 2, functionCall{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFunctionCall(tt.input, tt.cursor); got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestSignatureParams(t *testing.T) {
	tests := []struct {
		name string
		sig  jmespath.Signature
		want []string
	}{
		{"fixed", jmespath.Sig(jmespath.TypeArray, jmespath.TypeExpref), []string{"array", "expression"}},
		{"union", jmespath.Sig(jmespath.TypeArray | jmespath.TypeString), []string{"string|array"}},
		{
			"optional",
			jmespath.Signature{Params: []jmespath.ArgType{jmespath.TypeString, jmespath.TypeNumber}, Optional: 1},
			[]string{"string", "[number]"},
		},
		{
			"variadic",
			jmespath.Signature{Params: []jmespath.ArgType{jmespath.TypeObject}, Variadic: jmespath.TypeObject},
			[]string{"object", "object..."},
		},
		{"none", jmespath.Sig(), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signatureParams(tt.sig); !slices.Equal(got, tt.want) {
				t.Errorf("signatureParams() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	r := jmespath.Builtins()

	maxBy, ok := r.Lookup("max_by")
	if !ok {
		t.Fatal("max_by not registered")
	}

	if got := plain(renderSignatureHint(maxBy, 1)); got != "max_by(array, expression)" {
		t.Errorf("renderSignatureHint(max_by) = %q", got)
	}

	notNull, ok := r.Lookup("not_null")
	if !ok {
		t.Fatal("not_null not registered")
	}

	if got := plain(renderSignatureHint(notNull, 3)); got != "not_null(any, any...)" {
		t.Errorf("renderSignatureHint(not_null) = %q", got)
	}
}
