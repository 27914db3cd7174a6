package jmespath

import (
	"log/slog"
	"strings"
)

// parser builds an expression tree from a token stream by precedence
// climbing: each token has a left binding power, and an operator only
// claims the expression to its left when it binds tighter than the
// enclosing context.
type parser struct {
	expr string
	toks []token
	pos  int
}

// Parse parses expr into an expression tree without binding it to a
// registry. Most callers want [Compile].
func Parse(expr string) (*Node, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{expr: expr, toks: toks}

	root, err := p.parse(0)
	if err != nil {
		return nil, err
	}

	if tok := p.peek(0); tok.kind != tokEOF {
		return nil, p.unexpected(tok, tokEOF.String())
	}

	return root, nil
}

func (p *parser) peek(n int) token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	tok := p.peek(0)
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

func (p *parser) unexpected(tok token, expected ...string) error {
	attrs := []slog.Attr{slog.String("found", tok.describe())}
	if len(expected) > 0 {
		attrs = append(attrs, slog.String("expected", strings.Join(expected, " or ")))
	}

	return ErrUnexpectedToken.At(p.expr, tok.offset).With(attrs...)
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.advance()
	if tok.kind != kind {
		return tok, p.unexpected(tok, kind.String())
	}

	return tok, nil
}

// parse parses an expression whose operators bind tighter than rbp.
func (p *parser) parse(rbp int) (*Node, error) {
	left, err := p.nud(p.advance())
	if err != nil {
		return nil, err
	}

	for rbp < p.peek(0).kind.bindingPower() {
		left, err = p.led(p.advance(), left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// nud parses an expression that starts with tok.
func (p *parser) nud(tok token) (*Node, error) {
	at := tok.offset

	switch tok.kind {
	case tokAt:
		return &Node{Kind: NodeCurrent, Offset: at}, nil

	case tokIdentifier:
		return &Node{Kind: NodeField, Offset: at, Name: tok.text}, nil

	case tokQuotedIdentifier:
		if p.peek(0).kind == tokLparen {
			return nil, ErrQuotedFunctionName.At(p.expr, at).
				With(slog.String("name", tok.text))
		}

		return &Node{Kind: NodeField, Offset: at, Name: tok.text}, nil

	case tokLiteral, tokRawString:
		return &Node{Kind: NodeLiteral, Offset: at, Value: tok.value}, nil

	case tokStar:
		return p.parseProjection(ProjectValues, identity(at), at)

	case tokLbracket:
		switch next := p.peek(0); {
		case next.kind == tokNumber || next.kind == tokColon:
			idx, err := p.parseIndex(at)
			if err != nil {
				return nil, err
			}

			return p.projectIfSlice(identity(at), idx)

		case next.kind == tokStar && p.peek(1).kind == tokRbracket:
			p.advance()
			p.advance()

			return p.parseProjection(ProjectArray, identity(at), at)

		default:
			return p.parseMultiList(at)
		}

	case tokFlatten:
		return p.parseFlatten(identity(at), at)

	case tokFilter:
		return p.parseFilter(identity(at), at)

	case tokLbrace:
		return p.parseMultiHash(at)

	case tokExpref:
		ref, err := p.parse(tok.kind.bindingPower())
		if err != nil {
			return nil, err
		}

		return &Node{Kind: NodeExpref, Offset: at, Left: ref}, nil

	case tokNot:
		operand, err := p.parse(notOperandStop)
		if err != nil {
			return nil, err
		}

		return &Node{Kind: NodeNot, Offset: at, Left: operand}, nil

	case tokLparen:
		inner, err := p.parse(0)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokRparen); err != nil {
			return nil, err
		}

		return inner, nil

	default:
		return nil, p.unexpected(tok, "expression")
	}
}

// led parses the continuation of left introduced by tok.
func (p *parser) led(tok token, left *Node) (*Node, error) {
	at := tok.offset

	switch tok.kind {
	case tokDot:
		right, err := p.parseDot(tok.kind.bindingPower())
		if err != nil {
			return nil, err
		}

		return &Node{Kind: NodeSubexpr, Offset: at, Left: left, Right: right}, nil

	case tokLbracket:
		switch next := p.peek(0); {
		case next.kind == tokNumber || next.kind == tokColon:
			idx, err := p.parseIndex(at)
			if err != nil {
				return nil, err
			}

			return p.projectIfSlice(left, idx)

		case next.kind == tokStar && p.peek(1).kind == tokRbracket:
			p.advance()
			p.advance()

			return p.parseProjection(ProjectArray, left, at)

		default:
			return nil, p.unexpected(next, "number", "':'", "'*'")
		}

	case tokFlatten:
		return p.parseFlatten(left, at)

	case tokFilter:
		return p.parseFilter(left, at)

	case tokOr, tokAnd, tokPipe:
		right, err := p.parse(tok.kind.bindingPower())
		if err != nil {
			return nil, err
		}

		kind := NodePipe

		switch tok.kind {
		case tokOr:
			kind = NodeOr
		case tokAnd:
			kind = NodeAnd
		}

		return &Node{Kind: kind, Offset: at, Left: left, Right: right}, nil

	case tokEq, tokNe, tokLt, tokLte, tokGt, tokGte:
		right, err := p.parse(tok.kind.bindingPower())
		if err != nil {
			return nil, err
		}

		return &Node{
			Kind:       NodeComparison,
			Offset:     at,
			Comparator: comparators[tok.kind],
			Left:       left,
			Right:      right,
		}, nil

	case tokLparen:
		if left.Kind != NodeField {
			return nil, p.unexpected(tok, tokEOF.String())
		}

		args, err := p.parseList(tokRparen, true)
		if err != nil {
			return nil, err
		}

		return &Node{
			Kind:     NodeFunction,
			Offset:   left.Offset,
			Name:     left.Name,
			Elements: args,
		}, nil

	default:
		return nil, p.unexpected(tok)
	}
}

var comparators = map[tokenKind]Comparator{
	tokEq:  CompareEq,
	tokNe:  CompareNe,
	tokLt:  CompareLt,
	tokLte: CompareLte,
	tokGt:  CompareGt,
	tokGte: CompareGte,
}

func identity(offset int) *Node { return &Node{Kind: NodeIdentity, Offset: offset} }

// parseIndex parses the interior of "[N]" or "[start:stop:step]" after the
// opening bracket has been consumed.
func (p *parser) parseIndex(at int) (*Node, error) {
	var (
		parts [3]*int
		pos   int
	)

	for {
		tok := p.advance()

		switch tok.kind {
		case tokNumber:
			n := tok.number
			parts[pos] = &n

			if next := p.peek(0).kind; next != tokColon && next != tokRbracket {
				return nil, p.unexpected(p.peek(0), "':'", "']'")
			}

		case tokColon:
			pos++
			if pos > 2 {
				return nil, p.unexpected(tok, "number", "']'")
			}

		case tokRbracket:
			if pos == 0 {
				if parts[0] == nil {
					return nil, p.unexpected(tok, "number", "':'")
				}

				return &Node{Kind: NodeIndex, Offset: at, Index: *parts[0]}, nil
			}

			step := 1
			if parts[2] != nil {
				step = *parts[2]
			}

			if step == 0 {
				return nil, ErrInvalidSliceStep.At(p.expr, at).
					With(slog.Int("step", 0))
			}

			return &Node{
				Kind:   NodeSlice,
				Offset: at,
				Slice:  &Slice{Start: parts[0], Stop: parts[1], Step: step},
			}, nil

		default:
			return nil, p.unexpected(tok, "number", "':'", "']'")
		}
	}
}

// projectIfSlice joins left and an index node. Slices produce arrays, so a
// slice starts a projection over its result.
func (p *parser) projectIfSlice(left, idx *Node) (*Node, error) {
	sub := &Node{Kind: NodeSubexpr, Offset: idx.Offset, Left: left, Right: idx}
	if idx.Kind != NodeSlice {
		return sub, nil
	}

	right, err := p.parseProjectionRHS(tokStar.bindingPower())
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:       NodeProjection,
		Offset:     idx.Offset,
		Projection: ProjectArray,
		Left:       sub,
		Right:      right,
	}, nil
}

func (p *parser) parseProjection(kind ProjectionKind, left *Node, at int) (*Node, error) {
	right, err := p.parseProjectionRHS(tokStar.bindingPower())
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:       NodeProjection,
		Offset:     at,
		Projection: kind,
		Left:       left,
		Right:      right,
	}, nil
}

func (p *parser) parseFlatten(left *Node, at int) (*Node, error) {
	right, err := p.parseProjectionRHS(tokFlatten.bindingPower())
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:       NodeProjection,
		Offset:     at,
		Projection: ProjectFlatten,
		Left:       &Node{Kind: NodeFlatten, Offset: at, Left: left},
		Right:      right,
	}, nil
}

func (p *parser) parseFilter(left *Node, at int) (*Node, error) {
	predicate, err := p.parse(0)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRbracket); err != nil {
		return nil, err
	}

	right, err := p.parseProjectionRHS(tokFilter.bindingPower())
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:       NodeProjection,
		Offset:     at,
		Projection: ProjectFilter,
		Left:       left,
		Predicate:  predicate,
		Right:      right,
	}, nil
}

// parseProjectionRHS parses what a projection applies to each element. A
// token binding below projectionStop ends the projection, leaving Identity.
func (p *parser) parseProjectionRHS(rbp int) (*Node, error) {
	switch next := p.peek(0); {
	case next.kind.bindingPower() < projectionStop:
		return identity(next.offset), nil

	case next.kind == tokDot:
		p.advance()

		return p.parseDot(rbp)

	case next.kind == tokLbracket || next.kind == tokFilter:
		return p.parse(rbp)

	default:
		return nil, p.unexpected(next, "'.'", "'['", "'[?'")
	}
}

// parseDot parses the right-hand side of a '.'.
func (p *parser) parseDot(rbp int) (*Node, error) {
	switch next := p.peek(0); next.kind {
	case tokIdentifier, tokQuotedIdentifier, tokStar, tokLbrace, tokExpref:
		return p.parse(rbp)

	case tokLbracket:
		p.advance()

		return p.parseMultiList(next.offset)

	default:
		return nil, p.unexpected(next, "identifier", "'*'", "'['", "'{'")
	}
}

func (p *parser) parseMultiList(at int) (*Node, error) {
	elems, err := p.parseList(tokRbracket, false)
	if err != nil {
		return nil, err
	}

	return &Node{Kind: NodeMultiList, Offset: at, Elements: elems}, nil
}

// parseList parses comma separated expressions up to and including closer.
func (p *parser) parseList(closer tokenKind, allowEmpty bool) ([]*Node, error) {
	var nodes []*Node

	if allowEmpty && p.peek(0).kind == closer {
		p.advance()

		return nodes, nil
	}

	for {
		node, err := p.parse(0)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, node)

		switch tok := p.advance(); tok.kind {
		case tokComma:
			if p.peek(0).kind == closer {
				return nil, p.unexpected(p.peek(0), "expression")
			}
		case closer:
			return nodes, nil
		default:
			return nil, p.unexpected(tok, "','", closer.String())
		}
	}
}

func (p *parser) parseMultiHash(at int) (*Node, error) {
	var (
		keys  []string
		elems []*Node
	)

	for {
		key := p.advance()
		if key.kind != tokIdentifier && key.kind != tokQuotedIdentifier {
			return nil, p.unexpected(key, "identifier")
		}

		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}

		value, err := p.parse(0)
		if err != nil {
			return nil, err
		}

		keys = append(keys, key.text)
		elems = append(elems, value)

		switch tok := p.advance(); tok.kind {
		case tokComma:
		case tokRbrace:
			return &Node{Kind: NodeMultiHash, Offset: at, Keys: keys, Elements: elems}, nil
		default:
			return nil, p.unexpected(tok, "','", "'}'")
		}
	}
}
