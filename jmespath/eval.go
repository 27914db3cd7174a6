package jmespath

import (
	"errors"
	"log/slog"
)

// Context is the state of a single search: the expression being evaluated,
// the registry resolving its function calls, and the offset of the node
// currently being evaluated. A Context is created per search and must not
// be shared between goroutines.
type Context struct {
	Registry   *Registry
	Expression string
	Offset     int
}

// NewContext returns a Context for evaluating expr against registry.
func NewContext(expr string, registry *Registry) *Context {
	return &Context{Expression: expr, Registry: registry}
}

// fail places a runtime error at the current offset.
func (c *Context) fail(sentinel *Error, attrs ...slog.Attr) error {
	return sentinel.At(c.Expression, c.Offset).With(attrs...)
}

// Evaluate evaluates node against current.
func (c *Context) Evaluate(node *Node, current *Value) (*Value, error) {
	if node == nil {
		return current, nil
	}

	c.Offset = node.Offset

	switch node.Kind {
	case NodeIdentity, NodeCurrent:
		if current == nil {
			return null, nil
		}

		return current, nil

	case NodeField:
		return current.Get(node.Name), nil

	case NodeIndex:
		return current.Index(node.Index), nil

	case NodeSlice:
		return sliceValue(current, node.Slice), nil

	case NodeLiteral:
		return node.Value, nil

	case NodeSubexpr:
		left, err := c.Evaluate(node.Left, current)
		if err != nil || left.IsNull() {
			return null, err
		}

		return c.Evaluate(node.Right, left)

	case NodePipe:
		left, err := c.Evaluate(node.Left, current)
		if err != nil {
			return nil, err
		}

		return c.Evaluate(node.Right, left)

	case NodeFlatten:
		left, err := c.Evaluate(node.Left, current)
		if err != nil {
			return nil, err
		}

		return flatten(left), nil

	case NodeProjection:
		return c.project(node, current)

	case NodeOr:
		left, err := c.Evaluate(node.Left, current)
		if err != nil || left.Truthy() {
			return left, err
		}

		return c.Evaluate(node.Right, current)

	case NodeAnd:
		left, err := c.Evaluate(node.Left, current)
		if err != nil || !left.Truthy() {
			return left, err
		}

		return c.Evaluate(node.Right, current)

	case NodeNot:
		operand, err := c.Evaluate(node.Left, current)
		if err != nil {
			return nil, err
		}

		return Bool(!operand.Truthy()), nil

	case NodeComparison:
		return c.compare(node, current)

	case NodeMultiList:
		if current.IsNull() {
			return null, nil
		}

		items := make([]*Value, len(node.Elements))

		for i, elem := range node.Elements {
			v, err := c.Evaluate(elem, current)
			if err != nil {
				return nil, err
			}

			items[i] = v
		}

		return Array(items...), nil

	case NodeMultiHash:
		if current.IsNull() {
			return null, nil
		}

		members := make([]Member, len(node.Elements))

		for i, elem := range node.Elements {
			v, err := c.Evaluate(elem, current)
			if err != nil {
				return nil, err
			}

			members[i] = Member{Key: node.Keys[i], Value: v}
		}

		return Object(members...), nil

	case NodeFunction:
		return c.call(node, current)

	case NodeExpref:
		return newExpref(node.Left, c.Registry), nil

	default:
		return nil, c.fail(ErrUnexpectedToken, slog.String("node", node.Kind.String()))
	}
}

// project maps the right-hand side of a projection over its source,
// dropping null results.
func (c *Context) project(node *Node, current *Value) (*Value, error) {
	source, err := c.Evaluate(node.Left, current)
	if err != nil {
		return nil, err
	}

	want := KindArray
	if node.Projection == ProjectValues {
		want = KindObject
	}

	if source.Kind() != want {
		return null, nil
	}

	elems := source.values()
	out := make([]*Value, 0, len(elems))

	for _, elem := range elems {
		if node.Predicate != nil {
			keep, err := c.Evaluate(node.Predicate, elem)
			if err != nil {
				return nil, err
			}

			if !keep.Truthy() {
				continue
			}
		}

		v, err := c.Evaluate(node.Right, elem)
		if err != nil {
			return nil, err
		}

		if !v.IsNull() {
			out = append(out, v)
		}
	}

	return Array(out...), nil
}

func (c *Context) compare(node *Node, current *Value) (*Value, error) {
	left, err := c.Evaluate(node.Left, current)
	if err != nil {
		return nil, err
	}

	right, err := c.Evaluate(node.Right, current)
	if err != nil {
		return nil, err
	}

	switch node.Comparator {
	case CompareEq:
		return Bool(left.Equal(right)), nil
	case CompareNe:
		return Bool(!left.Equal(right)), nil
	}

	if left.Kind() != KindNumber || right.Kind() != KindNumber {
		return valFalse, nil
	}

	a, b := left.num, right.num

	switch node.Comparator {
	case CompareLt:
		return Bool(a < b), nil
	case CompareLte:
		return Bool(a <= b), nil
	case CompareGt:
		return Bool(a > b), nil
	default:
		return Bool(a >= b), nil
	}
}

// call evaluates the arguments of a function node and dispatches through
// the registry.
func (c *Context) call(node *Node, current *Value) (*Value, error) {
	fn, ok := c.Registry.Lookup(node.Name)
	if !ok {
		c.Offset = node.Offset

		return nil, c.fail(ErrUnknownFunction, slog.String("function", node.Name))
	}

	args := make([]*Value, len(node.Elements))

	for i, arg := range node.Elements {
		v, err := c.Evaluate(arg, current)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	c.Offset = node.Offset

	if err := fn.Signature.check(c, fn.Name, args); err != nil {
		return nil, err
	}

	result, err := fn.Func(c, args)
	if err != nil {
		return nil, c.place(err, fn.Name)
	}

	if result == nil {
		return null, nil
	}

	return result, nil
}

// place attaches the call site to errors returned by function
// implementations.
func (c *Context) place(err error, name string) error {
	var e *Error
	if !errors.As(err, &e) {
		return c.fail(ErrInvalidValue.Wrap(err), slog.String("function", name))
	}

	if e.placed {
		return err
	}

	if e.class == ClassNone {
		return c.fail(ErrInvalidValue.Wrap(err), slog.String("function", name))
	}

	return e.At(c.Expression, c.Offset)
}

// Apply evaluates the expression captured by ref against current. It is
// used by functions that take expression reference arguments.
func (c *Context) Apply(ref, current *Value) (*Value, error) {
	if ref.Kind() != KindExpref {
		return nil, c.fail(ErrInvalidType,
			slog.String("expected", KindExpref.String()),
			slog.String("actual", ref.Kind().String()),
		)
	}

	registry := ref.ref.registry
	if registry == nil {
		registry = c.Registry
	}

	// The reference runs in a copy of c so that callers keep their offset.
	inner := *c
	inner.Registry = registry

	v, err := inner.Evaluate(ref.ref.node, current)
	if err != nil {
		return nil, err
	}

	if v == nil {
		return null, nil
	}

	return v, nil
}

// flatten merges one level of nested arrays. Non-array elements are kept in
// place.
func flatten(v *Value) *Value {
	if v.Kind() != KindArray {
		return null
	}

	out := make([]*Value, 0, len(v.items))

	for _, item := range v.items {
		if item.Kind() == KindArray {
			out = append(out, item.items...)
		} else {
			out = append(out, item)
		}
	}

	return Array(out...)
}

// sliceValue applies s to an array. Other kinds yield null.
func sliceValue(v *Value, s *Slice) *Value {
	if v.Kind() != KindArray {
		return null
	}

	n := len(v.items)
	step := s.Step

	start, stop := sliceBounds(n, s.Start, s.Stop, step)

	out := make([]*Value, 0)

	// The distance checks keep i += step from overflowing on huge steps.
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, v.items[i])

			if stop-i <= step {
				break
			}
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, v.items[i])

			if i-stop <= -step {
				break
			}
		}
	}

	return Array(out...)
}

// sliceBounds resolves optional, possibly negative bounds into concrete
// positions for an array of length n.
func sliceBounds(n int, start, stop *int, step int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				if step < 0 {
					return -1
				}

				return 0
			}

			return i
		}

		if i >= n {
			if step < 0 {
				return n - 1
			}

			return n
		}

		return i
	}

	var lo, hi int

	switch {
	case start != nil:
		lo = clamp(*start)
	case step < 0:
		lo = n - 1
	default:
		lo = 0
	}

	switch {
	case stop != nil:
		hi = clamp(*stop)
	case step < 0:
		hi = -1
	default:
		hi = n
	}

	return lo, hi
}
