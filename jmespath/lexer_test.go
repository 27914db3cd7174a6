package jmespath

import (
	"errors"
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenKind
	}{
		{"identifier chain", "foo.bar", []tokenKind{tokIdentifier, tokDot, tokIdentifier}},
		{"flatten vs brackets", "a[] [ ]", []tokenKind{tokIdentifier, tokFlatten, tokLbracket, tokRbracket}},
		{"filter", "[?a]", []tokenKind{tokFilter, tokIdentifier, tokRbracket}},
		{"logic", "a || b && !c | d", []tokenKind{
			tokIdentifier, tokOr, tokIdentifier, tokAnd, tokNot, tokIdentifier, tokPipe, tokIdentifier,
		}},
		{"comparisons", "== != < <= > >=", []tokenKind{tokEq, tokNe, tokLt, tokLte, tokGt, tokGte}},
		{"expref and current", "&@", []tokenKind{tokExpref, tokAt}},
		{"punctuation", "{a:b,c}()*", []tokenKind{
			tokLbrace, tokIdentifier, tokColon, tokIdentifier, tokComma, tokIdentifier, tokRbrace,
			tokLparen, tokRparen, tokStar,
		}},
		{"numbers", "[-1:10]", []tokenKind{tokLbracket, tokNumber, tokColon, tokNumber, tokRbracket}},
		{"literals", "`1` 'raw' \"quoted\"", []tokenKind{tokLiteral, tokRawString, tokQuotedIdentifier}},
		{"whitespace", " \t\n\rfoo ", []tokenKind{tokIdentifier}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := tokenize(tt.input)
			if err != nil {
				t.Fatalf("tokenize() error: %v", err)
			}

			if len(toks) != len(tt.want)+1 {
				t.Fatalf("got %d tokens, want %d", len(toks), len(tt.want)+1)
			}

			for i, kind := range tt.want {
				if toks[i].kind != kind {
					t.Errorf("token %d = %v, want %v", i, toks[i].kind, kind)
				}
			}

			if last := toks[len(toks)-1]; last.kind != tokEOF || last.offset != len(tt.input) {
				t.Errorf("last token = %v@%d, want EOF@%d", last.kind, last.offset, len(tt.input))
			}
		})
	}
}

func TestTokenize_Payloads(t *testing.T) {
	toks, err := tokenize("\"a\\\"b\\u0041\" 'it\\'s \\n' `{\"k\": [1, \"\\`\"]}` -42")
	if err != nil {
		t.Fatalf("tokenize() error: %v", err)
	}

	if got := toks[0].text; got != `a"bA` {
		t.Errorf("quoted identifier = %q, want %q", got, `a"bA`)
	}

	if got := toks[1].value.Str(); got != `it's \n` {
		t.Errorf("raw string = %q, want %q", got, `it's \n`)
	}

	if got := toks[2].value.String(); got != "{\"k\":[1,\"`\"]}" {
		t.Errorf("literal = %s", got)
	}

	if toks[3].number != -42 {
		t.Errorf("number = %d, want -42", toks[3].number)
	}
}

func TestTokenize_Offsets(t *testing.T) {
	toks, err := tokenize("foo  .  [?bar]")
	if err != nil {
		t.Fatalf("tokenize() error: %v", err)
	}

	want := []int{0, 5, 8, 10, 13, 14}
	for i, off := range want {
		if toks[i].offset != off {
			t.Errorf("token %d offset = %d, want %d", i, toks[i].offset, off)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		offset   int
	}{
		{"unknown character", "foo#", ErrUnexpectedCharacter, 3},
		{"single equals", "a = b", ErrUnexpectedCharacter, 2},
		{"dangling minus", "[-]", ErrUnexpectedCharacter, 1},
		{"unterminated quoted", `foo."bar`, ErrUnterminatedLiteral, 4},
		{"unterminated raw", `'abc`, ErrUnterminatedLiteral, 0},
		{"unterminated literal", "a == `1", ErrUnterminatedLiteral, 5},
		{"invalid json literal", "`{a}`", ErrInvalidLiteral, 0},
		{"invalid escape", `"\q"`, ErrInvalidLiteral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokenize(tt.input)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}

			if !IsLexError(err) {
				t.Errorf("expected lex error class, got %v", err)
			}

			var e *Error
			if !errors.As(err, &e) || e.Offset() != tt.offset {
				t.Errorf("offset = %d, want %d", e.Offset(), tt.offset)
			}

			if e.Expression() != tt.input {
				t.Errorf("expression = %q, want %q", e.Expression(), tt.input)
			}
		})
	}
}
