package jmespath

// tokenKind classifies a lexical token.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdentifier
	tokQuotedIdentifier
	tokNumber
	tokLiteral
	tokRawString
	tokDot
	tokStar
	tokFlatten
	tokFilter
	tokLbracket
	tokRbracket
	tokLbrace
	tokRbrace
	tokLparen
	tokRparen
	tokComma
	tokColon
	tokPipe
	tokOr
	tokAnd
	tokNot
	tokAt
	tokExpref
	tokEq
	tokNe
	tokLt
	tokLte
	tokGt
	tokGte
)

var tokenNames = [...]string{
	tokEOF:              "end of expression",
	tokIdentifier:       "identifier",
	tokQuotedIdentifier: "quoted identifier",
	tokNumber:           "number",
	tokLiteral:          "literal",
	tokRawString:        "raw string",
	tokDot:              "'.'",
	tokStar:             "'*'",
	tokFlatten:          "'[]'",
	tokFilter:           "'[?'",
	tokLbracket:         "'['",
	tokRbracket:         "']'",
	tokLbrace:           "'{'",
	tokRbrace:           "'}'",
	tokLparen:           "'('",
	tokRparen:           "')'",
	tokComma:            "','",
	tokColon:            "':'",
	tokPipe:             "'|'",
	tokOr:               "'||'",
	tokAnd:              "'&&'",
	tokNot:              "'!'",
	tokAt:               "'@'",
	tokExpref:           "'&'",
	tokEq:               "'=='",
	tokNe:               "'!='",
	tokLt:               "'<'",
	tokLte:              "'<='",
	tokGt:               "'>'",
	tokGte:              "'>='",
}

func (k tokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "unknown token"
}

// bindingPower returns the left binding power of a token. Tokens that can
// never continue an expression bind with 0.
func (k tokenKind) bindingPower() int {
	switch k {
	case tokPipe:
		return 1
	case tokOr:
		return 2
	case tokAnd:
		return 3
	case tokEq, tokNe, tokLt, tokLte, tokGt, tokGte:
		return 5
	case tokFlatten:
		return 9
	case tokStar:
		return 20
	case tokFilter:
		return 21
	case tokDot:
		return 40
	case tokLbrace:
		return 50
	case tokLbracket:
		return 55
	case tokLparen:
		return 60
	default:
		return 0
	}
}

// projectionStop is the binding power below which a token ends the
// right-hand side of a projection.
const projectionStop = 10

// notOperandStop is the right binding power of the operand of '!'. The
// operand takes the whole postfix chain and stops before a comparison.
const notOperandStop = 5

// token is one lexical unit of an expression.
type token struct {
	value  *Value // pre-decoded payload of literals and raw strings
	text   string // identifier name
	offset int
	number int
	kind   tokenKind
}

func (t token) describe() string {
	switch t.kind {
	case tokIdentifier, tokQuotedIdentifier:
		return t.kind.String() + " " + t.text
	case tokNumber, tokLiteral, tokRawString:
		return t.kind.String() + " " + t.value.String()
	default:
		return t.kind.String()
	}
}
