package jmespath

import (
	"encoding/json"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
)

// builtins returns the standard function library.
func builtins() []Function {
	return []Function{
		{Name: "abs", Signature: Sig(TypeNumber), Func: fnAbs},
		{Name: "avg", Signature: Sig(TypeArrayNumber), Func: fnAvg},
		{Name: "ceil", Signature: Sig(TypeNumber), Func: fnCeil},
		{Name: "contains", Signature: Sig(TypeArray|TypeString, TypeAny), Func: fnContains},
		{Name: "ends_with", Signature: Sig(TypeString, TypeString), Func: fnEndsWith},
		{Name: "floor", Signature: Sig(TypeNumber), Func: fnFloor},
		{Name: "join", Signature: Sig(TypeString, TypeArrayString), Func: fnJoin},
		{Name: "keys", Signature: Sig(TypeObject), Func: fnKeys},
		{Name: "length", Signature: Sig(TypeString | TypeArray | TypeObject), Func: fnLength},
		{Name: "map", Signature: Sig(TypeExpref, TypeArray), Func: fnMap},
		{Name: "max", Signature: Sig(TypeArrayNumber | TypeArrayString), Func: fnMax},
		{Name: "max_by", Signature: Sig(TypeArray, TypeExpref), Func: fnMaxBy},
		{Name: "merge", Signature: Signature{Params: []ArgType{TypeObject}, Variadic: TypeObject}, Func: fnMerge},
		{Name: "min", Signature: Sig(TypeArrayNumber | TypeArrayString), Func: fnMin},
		{Name: "min_by", Signature: Sig(TypeArray, TypeExpref), Func: fnMinBy},
		{Name: "not_null", Signature: Signature{Params: []ArgType{TypeAny}, Variadic: TypeAny}, Func: fnNotNull},
		{Name: "reverse", Signature: Sig(TypeString | TypeArray), Func: fnReverse},
		{Name: "sort", Signature: Sig(TypeArrayNumber | TypeArrayString), Func: fnSort},
		{Name: "sort_by", Signature: Sig(TypeArray, TypeExpref), Func: fnSortBy},
		{Name: "starts_with", Signature: Sig(TypeString, TypeString), Func: fnStartsWith},
		{Name: "sum", Signature: Sig(TypeArrayNumber), Func: fnSum},
		{Name: "to_array", Signature: Sig(TypeAny), Func: fnToArray},
		{Name: "to_number", Signature: Sig(TypeAny), Func: fnToNumber},
		{Name: "to_string", Signature: Sig(TypeAny), Func: fnToString},
		{Name: "type", Signature: Sig(TypeAny), Func: fnType},
		{Name: "values", Signature: Sig(TypeObject), Func: fnValues},
	}
}

func fnAbs(_ *Context, args []*Value) (*Value, error) {
	return Number(math.Abs(args[0].num)), nil
}

func fnCeil(_ *Context, args []*Value) (*Value, error) {
	return Number(math.Ceil(args[0].num)), nil
}

func fnFloor(_ *Context, args []*Value) (*Value, error) {
	return Number(math.Floor(args[0].num)), nil
}

func fnSum(_ *Context, args []*Value) (*Value, error) {
	var total float64
	for _, item := range args[0].items {
		total += item.num
	}

	return Number(total), nil
}

func fnAvg(_ *Context, args []*Value) (*Value, error) {
	items := args[0].items
	if len(items) == 0 {
		return null, nil
	}

	var total float64
	for _, item := range items {
		total += item.num
	}

	return Number(total / float64(len(items))), nil
}

func fnContains(_ *Context, args []*Value) (*Value, error) {
	subject, search := args[0], args[1]

	if subject.Kind() == KindString {
		if search.Kind() != KindString {
			return valFalse, nil
		}

		return Bool(strings.Contains(subject.str, search.str)), nil
	}

	return Bool(slices.ContainsFunc(subject.items, search.Equal)), nil
}

func fnStartsWith(_ *Context, args []*Value) (*Value, error) {
	return Bool(strings.HasPrefix(args[0].str, args[1].str)), nil
}

func fnEndsWith(_ *Context, args []*Value) (*Value, error) {
	return Bool(strings.HasSuffix(args[0].str, args[1].str)), nil
}

func fnJoin(_ *Context, args []*Value) (*Value, error) {
	parts := make([]string, len(args[1].items))
	for i, item := range args[1].items {
		parts[i] = item.str
	}

	return String(strings.Join(parts, args[0].str)), nil
}

func fnKeys(_ *Context, args []*Value) (*Value, error) {
	keys := make([]*Value, len(args[0].keys))
	for i, key := range args[0].keys {
		keys[i] = String(key)
	}

	return Array(keys...), nil
}

func fnValues(_ *Context, args []*Value) (*Value, error) {
	return Array(slices.Clone(args[0].items)...), nil
}

func fnLength(_ *Context, args []*Value) (*Value, error) {
	return Number(float64(args[0].Len())), nil
}

func fnMap(c *Context, args []*Value) (*Value, error) {
	ref, source := args[0], args[1]
	out := make([]*Value, len(source.items))

	for i, item := range source.items {
		v, err := c.Apply(ref, item)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return Array(out...), nil
}

// extreme returns the element of items that sorts last when want is 1, or
// first when want is -1. Items are homogeneous numbers or strings.
func extreme(items []*Value, want int) *Value {
	if len(items) == 0 {
		return null
	}

	best := items[0]
	for _, item := range items[1:] {
		if cmp, _ := item.Compare(best); cmp == want {
			best = item
		}
	}

	return best
}

func fnMax(_ *Context, args []*Value) (*Value, error) {
	return extreme(args[0].items, 1), nil
}

func fnMin(_ *Context, args []*Value) (*Value, error) {
	return extreme(args[0].items, -1), nil
}

// sortKeys evaluates ref against each element of items. The keys must be
// all numbers or all strings.
func sortKeys(c *Context, name string, ref *Value, items []*Value) ([]*Value, error) {
	keys := make([]*Value, len(items))

	for i, item := range items {
		key, err := c.Apply(ref, item)
		if err != nil {
			return nil, err
		}

		kind := key.Kind()
		if (kind != KindNumber && kind != KindString) || (i > 0 && kind != keys[0].Kind()) {
			expected := "number|string"
			if i > 0 {
				expected = keys[0].Kind().String()
			}

			return nil, c.fail(ErrInvalidType,
				slog.String("function", name),
				slog.Int("element", i),
				slog.String("expected", expected),
				slog.String("actual", kind.String()),
			)
		}

		keys[i] = key
	}

	return keys, nil
}

func extremeBy(c *Context, name string, args []*Value, want int) (*Value, error) {
	items := args[0].items

	keys, err := sortKeys(c, name, args[1], items)
	if err != nil || len(items) == 0 {
		return null, err
	}

	best := 0
	for i := 1; i < len(items); i++ {
		if cmp, _ := keys[i].Compare(keys[best]); cmp == want {
			best = i
		}
	}

	return items[best], nil
}

func fnMaxBy(c *Context, args []*Value) (*Value, error) {
	return extremeBy(c, "max_by", args, 1)
}

func fnMinBy(c *Context, args []*Value) (*Value, error) {
	return extremeBy(c, "min_by", args, -1)
}

func fnSort(_ *Context, args []*Value) (*Value, error) {
	items := slices.Clone(args[0].items)

	slices.SortStableFunc(items, func(a, b *Value) int {
		cmp, _ := a.Compare(b)

		return cmp
	})

	return Array(items...), nil
}

func fnSortBy(c *Context, args []*Value) (*Value, error) {
	items := args[0].items

	keys, err := sortKeys(c, "sort_by", args[1], items)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		cmp, _ := keys[a].Compare(keys[b])

		return cmp
	})

	out := make([]*Value, len(items))
	for i, j := range order {
		out[i] = items[j]
	}

	return Array(out...), nil
}

func fnMerge(_ *Context, args []*Value) (*Value, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	var members []Member

	for _, obj := range args {
		for key, v := range obj.Fields() {
			members = append(members, Member{Key: key, Value: v})
		}
	}

	return Object(members...), nil
}

func fnNotNull(_ *Context, args []*Value) (*Value, error) {
	for _, arg := range args {
		if !arg.IsNull() {
			return arg, nil
		}
	}

	return null, nil
}

func fnReverse(_ *Context, args []*Value) (*Value, error) {
	if args[0].Kind() == KindString {
		runes := []rune(args[0].str)
		slices.Reverse(runes)

		return String(string(runes)), nil
	}

	items := slices.Clone(args[0].items)
	slices.Reverse(items)

	return Array(items...), nil
}

func fnToArray(_ *Context, args []*Value) (*Value, error) {
	if args[0].Kind() == KindArray {
		return args[0], nil
	}

	return Array(args[0]), nil
}

func fnToNumber(_ *Context, args []*Value) (*Value, error) {
	switch v := args[0]; v.Kind() {
	case KindNumber:
		return v, nil
	case KindString:
		s := v.str
		if s == "" || (s[0] != '-' && !isDigit(s[0])) || !json.Valid([]byte(s)) {
			return null, nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return null, nil
		}

		return Number(f), nil
	default:
		return null, nil
	}
}

func fnToString(_ *Context, args []*Value) (*Value, error) {
	if args[0].Kind() == KindString {
		return args[0], nil
	}

	return String(args[0].String()), nil
}

func fnType(_ *Context, args []*Value) (*Value, error) {
	return String(args[0].Kind().String()), nil
}
