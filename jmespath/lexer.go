package jmespath

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// lexer splits an expression into tokens. It is not restartable.
type lexer struct {
	src string
	pos int
}

// tokenize returns every token of expr followed by a single tokEOF.
func tokenize(expr string) ([]token, error) {
	lx := &lexer{src: expr}
	toks := make([]token, 0, len(expr)/2+1)

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (lx *lexer) peekByte(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}

	return 0
}

func (lx *lexer) fail(sentinel *Error, offset int, attrs ...slog.Attr) error {
	return sentinel.At(lx.src, offset).With(attrs...)
}

func (lx *lexer) next() (token, error) {
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		lx.pos++
	}

	start := lx.pos
	if start >= len(lx.src) {
		return token{kind: tokEOF, offset: start}, nil
	}

	simple := func(kind tokenKind, width int) (token, error) {
		lx.pos += width

		return token{kind: kind, offset: start}, nil
	}

	// alt picks kind2 if the next byte is follow.
	alt := func(follow byte, kind2, kind1 tokenKind) (token, error) {
		if lx.peekByte(1) == follow {
			return simple(kind2, 2)
		}

		return simple(kind1, 1)
	}

	switch c := lx.src[start]; {
	case isIdentStart(c):
		for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
			lx.pos++
		}

		return token{kind: tokIdentifier, offset: start, text: lx.src[start:lx.pos]}, nil

	case c == '-' || isDigit(c):
		return lx.lexNumber()

	case c == '"':
		return lx.lexQuotedIdentifier()

	case c == '\'':
		return lx.lexRawString()

	case c == '`':
		return lx.lexLiteral()

	case c == '.':
		return simple(tokDot, 1)
	case c == '*':
		return simple(tokStar, 1)
	case c == '@':
		return simple(tokAt, 1)
	case c == ',':
		return simple(tokComma, 1)
	case c == ':':
		return simple(tokColon, 1)
	case c == '(':
		return simple(tokLparen, 1)
	case c == ')':
		return simple(tokRparen, 1)
	case c == '{':
		return simple(tokLbrace, 1)
	case c == '}':
		return simple(tokRbrace, 1)
	case c == ']':
		return simple(tokRbracket, 1)

	case c == '[':
		switch lx.peekByte(1) {
		case ']':
			return simple(tokFlatten, 2)
		case '?':
			return simple(tokFilter, 2)
		default:
			return simple(tokLbracket, 1)
		}

	case c == '|':
		return alt('|', tokOr, tokPipe)
	case c == '&':
		return alt('&', tokAnd, tokExpref)
	case c == '!':
		return alt('=', tokNe, tokNot)
	case c == '<':
		return alt('=', tokLte, tokLt)
	case c == '>':
		return alt('=', tokGte, tokGt)

	case c == '=':
		if lx.peekByte(1) == '=' {
			return simple(tokEq, 2)
		}

		return token{}, lx.fail(ErrUnexpectedCharacter, start,
			slog.String("found", "="),
			slog.String("expected", "=="),
		)

	default:
		r, _ := utf8.DecodeRuneInString(lx.src[start:])

		return token{}, lx.fail(ErrUnexpectedCharacter, start,
			slog.String("found", string(r)),
		)
	}
}

func (lx *lexer) lexNumber() (token, error) {
	start := lx.pos
	if lx.src[lx.pos] == '-' {
		lx.pos++
	}

	digits := lx.pos
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.pos++
	}

	if lx.pos == digits {
		return token{}, lx.fail(ErrUnexpectedCharacter, start,
			slog.String("found", "-"),
			slog.String("expected", "digit"),
		)
	}

	text := lx.src[start:lx.pos]

	n, err := strconv.Atoi(text)
	if err != nil {
		return token{}, ErrInvalidLiteral.Wrap(err).At(lx.src, start)
	}

	return token{
		kind:   tokNumber,
		offset: start,
		number: n,
		value:  Number(float64(n)),
	}, nil
}

// scanDelimited advances past the closing delim, honoring backslash escapes,
// and returns the raw text between the delimiters.
func (lx *lexer) scanDelimited(delim byte) (string, bool) {
	start := lx.pos
	lx.pos++

	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
		case delim:
			lx.pos++

			return lx.src[start+1 : lx.pos-1], true
		default:
			lx.pos++
		}
	}

	lx.pos = len(lx.src)

	return "", false
}

func (lx *lexer) lexQuotedIdentifier() (token, error) {
	start := lx.pos

	body, ok := lx.scanDelimited('"')
	if !ok {
		return token{}, lx.fail(ErrUnterminatedLiteral, start,
			slog.String("delimiter", `"`),
		)
	}

	var name string
	if err := json.Unmarshal([]byte(`"`+body+`"`), &name); err != nil {
		return token{}, ErrInvalidLiteral.Wrap(err).At(lx.src, start)
	}

	return token{kind: tokQuotedIdentifier, offset: start, text: name}, nil
}

func (lx *lexer) lexRawString() (token, error) {
	start := lx.pos

	body, ok := lx.scanDelimited('\'')
	if !ok {
		return token{}, lx.fail(ErrUnterminatedLiteral, start,
			slog.String("delimiter", "'"),
		)
	}

	return token{
		kind:   tokRawString,
		offset: start,
		value:  String(strings.ReplaceAll(body, `\'`, `'`)),
	}, nil
}

func (lx *lexer) lexLiteral() (token, error) {
	start := lx.pos

	body, ok := lx.scanDelimited('`')
	if !ok {
		return token{}, lx.fail(ErrUnterminatedLiteral, start,
			slog.String("delimiter", "`"),
		)
	}

	doc := strings.TrimSpace(strings.ReplaceAll(body, "\\`", "`"))

	v, err := ParseJSON([]byte(doc))
	if err != nil {
		return token{}, ErrInvalidLiteral.Wrap(err).At(lx.src, start).
			With(slog.String("literal", doc))
	}

	return token{kind: tokLiteral, offset: start, value: v}, nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
