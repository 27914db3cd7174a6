package jmespath

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// NodeKind identifies the variant of a [Node].
type NodeKind uint8

const (
	NodeIdentity NodeKind = iota
	NodeCurrent
	NodeField
	NodeIndex
	NodeSlice
	NodeSubexpr
	NodeFlatten
	NodeProjection
	NodeOr
	NodeAnd
	NodeNot
	NodeComparison
	NodeLiteral
	NodeMultiList
	NodeMultiHash
	NodeFunction
	NodeExpref
	NodePipe
)

var nodeKindNames = [...]string{
	NodeIdentity:   "Identity",
	NodeCurrent:    "Current",
	NodeField:      "Field",
	NodeIndex:      "Index",
	NodeSlice:      "Slice",
	NodeSubexpr:    "Subexpr",
	NodeFlatten:    "Flatten",
	NodeProjection: "Projection",
	NodeOr:         "Or",
	NodeAnd:        "And",
	NodeNot:        "Not",
	NodeComparison: "Comparison",
	NodeLiteral:    "Literal",
	NodeMultiList:  "MultiList",
	NodeMultiHash:  "MultiHash",
	NodeFunction:   "Function",
	NodeExpref:     "Expref",
	NodePipe:       "Pipe",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}

	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// ProjectionKind distinguishes the forms that start a projection.
type ProjectionKind uint8

const (
	ProjectArray   ProjectionKind = iota // [*]
	ProjectFlatten                       // []
	ProjectFilter                        // [?]
	ProjectValues                        // *
)

func (k ProjectionKind) String() string {
	switch k {
	case ProjectArray:
		return "[*]"
	case ProjectFlatten:
		return "[]"
	case ProjectFilter:
		return "[?]"
	case ProjectValues:
		return "*"
	default:
		return "?"
	}
}

// Comparator is a comparison operator.
type Comparator uint8

const (
	CompareEq Comparator = iota // ==
	CompareNe                   // !=
	CompareLt                   // <
	CompareLte                  // <=
	CompareGt                   // >
	CompareGte                  // >=
)

func (c Comparator) String() string {
	switch c {
	case CompareEq:
		return "=="
	case CompareNe:
		return "!="
	case CompareLt:
		return "<"
	case CompareLte:
		return "<="
	case CompareGt:
		return ">"
	case CompareGte:
		return ">="
	default:
		return "?"
	}
}

// Slice holds the bounds of a slice expression. Nil bounds were omitted.
type Slice struct {
	Start *int
	Stop  *int
	Step  int
}

func (s Slice) String() string {
	bound := func(p *int) string {
		if p == nil {
			return ""
		}

		return strconv.Itoa(*p)
	}

	return "[" + bound(s.Start) + ":" + bound(s.Stop) + ":" + strconv.Itoa(s.Step) + "]"
}

// Node is an immutable expression tree node.
//
// Which fields are meaningful depends on Kind:
//
//	Field        Name
//	Index        Index
//	Slice        Slice
//	Subexpr      Left, Right
//	Flatten      Left
//	Projection   Projection, Left (source), Predicate (filter only), Right
//	Or, And      Left, Right
//	Not          Left
//	Comparison   Comparator, Left, Right
//	Literal      Value
//	MultiList    Elements
//	MultiHash    Keys, Elements (parallel)
//	Function     Name, Elements (arguments)
//	Expref       Left
//	Pipe         Left, Right
type Node struct {
	Value      *Value
	Left       *Node
	Right      *Node
	Predicate  *Node
	Slice      *Slice
	Name       string
	Elements   []*Node
	Keys       []string
	Index      int
	Offset     int
	Kind       NodeKind
	Projection ProjectionKind
	Comparator Comparator
}

// children returns an iterator over the direct descendants of n in
// evaluation order.
func (n *Node) children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, c := range []*Node{n.Left, n.Predicate, n.Right} {
			if c != nil && !yield(c) {
				return
			}
		}

		for _, c := range n.Elements {
			if !yield(c) {
				return
			}
		}
	}
}

// Walk calls fn for n and each of its descendants in depth-first order.
// Descent stops at any node for which fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for c := range n.children() {
		c.Walk(fn)
	}
}

// label returns a one-line description of n without its descendants.
func (n *Node) label() string {
	switch n.Kind {
	case NodeField:
		return "Field " + strconv.Quote(n.Name)
	case NodeIndex:
		return "Index " + strconv.Itoa(n.Index)
	case NodeSlice:
		return "Slice " + n.Slice.String()
	case NodeProjection:
		return "Projection " + n.Projection.String()
	case NodeComparison:
		return "Comparison " + n.Comparator.String()
	case NodeLiteral:
		return "Literal " + n.Value.String()
	case NodeFunction:
		return "Function " + n.Name
	case NodeMultiHash:
		return "MultiHash {" + strings.Join(n.Keys, ", ") + "}"
	default:
		return n.Kind.String()
	}
}

// String returns a compact, single-line rendering of the tree.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	var sb strings.Builder

	sb.WriteString(n.label())

	first := true
	for c := range n.children() {
		if first {
			sb.WriteByte('(')

			first = false
		} else {
			sb.WriteString(", ")
		}

		sb.WriteString(c.String())
	}

	if !first {
		sb.WriteByte(')')
	}

	return sb.String()
}

// Print writes an indented rendering of the tree to w, one node per line,
// each prefixed by its source offset.
func (n *Node) Print(w io.Writer, indent int) error {
	return n.print(w, indent, 0, "")
}

func (n *Node) print(w io.Writer, indent, depth int, role string) error {
	if n == nil {
		return nil
	}

	pad := strings.Repeat(" ", indent*depth)
	if role != "" {
		role += ": "
	}

	if _, err := fmt.Fprintf(w, "%s%s%s @%d\n", pad, role, n.label(), n.Offset); err != nil {
		return err
	}

	next := depth + 1

	roles := [...]struct {
		node *Node
		name string
	}{
		{n.Left, "left"},
		{n.Predicate, "predicate"},
		{n.Right, "right"},
	}

	for _, r := range roles {
		if err := r.node.print(w, indent, next, r.name); err != nil {
			return err
		}
	}

	for i, c := range n.Elements {
		name := strconv.Itoa(i)
		if n.Kind == NodeMultiHash && i < len(n.Keys) {
			name = n.Keys[i]
		}

		if err := c.print(w, indent, next, name); err != nil {
			return err
		}
	}

	return nil
}
