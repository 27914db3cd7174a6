package jmespath

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

import (
	"iter"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindNull   Kind = iota // null
	KindBool               // boolean
	KindNumber             // number
	KindString             // string
	KindArray              // array
	KindObject             // object
	KindExpref             // expref
)

// indexThreshold is the smallest object size for which a key index is built.
// Smaller objects are searched linearly.
const indexThreshold = 8

// Value is an immutable semi-structured value.
//
// A *Value may be aliased by any number of parents and shared between
// goroutines; nothing modifies a Value after construction. The nil *Value is
// equivalent to null.
type Value struct {
	items []*Value       // array elements or object member values
	keys  []string       // object member keys, parallel to items
	index map[string]int // object key positions, nil for small objects
	ref   *expref
	str   string
	num   float64
	kind  Kind
	flag  bool
}

// expref is the payload of an expression reference: an unevaluated subtree
// and the registry it resolves function calls against.
type expref struct {
	node     *Node
	registry *Registry
}

// Member is one key/value pair of an object.
type Member struct {
	Value *Value
	Key   string
}

var (
	null     = &Value{kind: KindNull}
	valTrue  = &Value{kind: KindBool, flag: true}
	valFalse = &Value{kind: KindBool}
	empty    = &Value{kind: KindString}
)

// Null returns the null value.
func Null() *Value { return null }

// Bool returns the boolean value b.
func Bool(b bool) *Value {
	if b {
		return valTrue
	}

	return valFalse
}

// Number returns the number value f.
func Number(f float64) *Value { return &Value{kind: KindNumber, num: f} }

// String returns the string value s.
func String(s string) *Value {
	if s == "" {
		return empty
	}

	return &Value{kind: KindString, str: s}
}

// Array returns an array holding items. The slice is retained, so callers
// must not modify it afterward. Nil elements are stored as null.
func Array(items ...*Value) *Value {
	for i, item := range items {
		if item == nil {
			items[i] = null
		}
	}

	return &Value{kind: KindArray, items: items}
}

// Object returns an object holding members in the given order.
// When a key repeats, the last value wins and the first position is kept.
func Object(members ...Member) *Value {
	v := &Value{
		kind:  KindObject,
		keys:  make([]string, 0, len(members)),
		items: make([]*Value, 0, len(members)),
	}

	var seen map[string]int
	if len(members) >= indexThreshold {
		seen = make(map[string]int, len(members))
	}

	for _, m := range members {
		if m.Value == nil {
			m.Value = null
		}

		pos := -1
		if seen != nil {
			if i, ok := seen[m.Key]; ok {
				pos = i
			}
		} else {
			pos = slices.Index(v.keys, m.Key)
		}

		if pos >= 0 {
			v.items[pos] = m.Value

			continue
		}

		if seen != nil {
			seen[m.Key] = len(v.keys)
		}

		v.keys = append(v.keys, m.Key)
		v.items = append(v.items, m.Value)
	}

	if len(v.keys) >= indexThreshold {
		v.index = seen
	}

	return v
}

func newExpref(node *Node, registry *Registry) *Value {
	return &Value{kind: KindExpref, ref: &expref{node: node, registry: registry}}
}

// Kind returns the variant of v.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}

	return v.kind
}

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// Bool returns the boolean held by v, or false if v is not a boolean.
func (v *Value) Bool() bool { return v.Kind() == KindBool && v.flag }

// Number returns the number held by v, or 0 if v is not a number.
func (v *Value) Number() float64 {
	if v.Kind() != KindNumber {
		return 0
	}

	return v.num
}

// Str returns the string held by v, or "" if v is not a string.
// Use [Value.String] for the JSON rendering of any value.
func (v *Value) Str() string {
	if v.Kind() != KindString {
		return ""
	}

	return v.str
}

// Len returns the number of elements of an array, members of an object, or
// code points of a string. It returns 0 for every other kind.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray, KindObject:
		return len(v.items)
	case KindString:
		return utf8.RuneCountInString(v.str)
	default:
		return 0
	}
}

// Index returns the i'th element of an array. Negative indices count from
// the end. It returns null if v is not an array or i is out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != KindArray {
		return null
	}

	if i < 0 {
		i += len(v.items)
	}

	if i < 0 || i >= len(v.items) {
		return null
	}

	return v.items[i]
}

// Items returns an iterator over the elements of an array.
func (v *Value) Items() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		if v.Kind() != KindArray {
			return
		}

		for i, item := range v.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Get returns the member of an object named key, or null if v is not an
// object or has no such member.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindObject {
		return null
	}

	if v.index != nil {
		if i, ok := v.index[key]; ok {
			return v.items[i]
		}

		return null
	}

	if i := slices.Index(v.keys, key); i >= 0 {
		return v.items[i]
	}

	return null
}

// Has reports whether v is an object with a member named key.
func (v *Value) Has(key string) bool {
	if v.Kind() != KindObject {
		return false
	}

	if v.index != nil {
		_, ok := v.index[key]

		return ok
	}

	return slices.Contains(v.keys, key)
}

// Keys returns a copy of an object's keys in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}

	return slices.Clone(v.keys)
}

// Fields returns an iterator over an object's members in insertion order.
func (v *Value) Fields() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if v.Kind() != KindObject {
			return
		}

		for i, key := range v.keys {
			if !yield(key, v.items[i]) {
				return
			}
		}
	}
}

// values returns the elements of an array or the member values of an
// object. The returned slice is shared and must not be modified.
func (v *Value) values() []*Value {
	switch v.Kind() {
	case KindArray, KindObject:
		return v.items
	default:
		return nil
	}
}

// Truthy reports whether v is true under JMESPath truthiness: false, null,
// and the empty string, array, and object are false; every other value,
// including the number 0, is true.
func (v *Value) Truthy() bool {
	switch v.Kind() {
	case KindNull:
		return false
	case KindBool:
		return v.flag
	case KindString:
		return v.str != ""
	case KindArray, KindObject:
		return len(v.items) > 0
	default:
		return true
	}
}

// Equal reports whether v and w are structurally equal. Object member order
// is not significant. Expression references are equal only to themselves.
func (v *Value) Equal(w *Value) bool {
	if v.Kind() != w.Kind() {
		return false
	}

	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.flag == w.flag
	case KindNumber:
		return v.num == w.num
	case KindString:
		return v.str == w.str
	case KindArray:
		return slices.EqualFunc(v.items, w.items, (*Value).Equal)
	case KindObject:
		if len(v.items) != len(w.items) {
			return false
		}

		for i, key := range v.keys {
			if !w.Has(key) || !v.items[i].Equal(w.Get(key)) {
				return false
			}
		}

		return true
	default:
		return v.ref == w.ref
	}
}

// Compare orders v against w and reports whether the two are comparable.
// Values of different kinds order as null < boolean < number < string <
// array < object. Within a kind, booleans order false before true, numbers
// numerically, and strings by code point. Arrays and objects only compare
// equal or not, so ok is false when they differ.
func (v *Value) Compare(w *Value) (cmp int, ok bool) {
	vk, wk := v.Kind(), w.Kind()
	if vk != wk {
		if vk < wk {
			return -1, true
		}

		return 1, true
	}

	switch vk {
	case KindNull:
		return 0, true
	case KindBool:
		switch {
		case v.flag == w.flag:
			return 0, true
		case w.flag:
			return -1, true
		default:
			return 1, true
		}
	case KindNumber:
		switch {
		case v.num < w.num:
			return -1, true
		case v.num > w.num:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		return strings.Compare(v.str, w.str), true
	default:
		if v.Equal(w) {
			return 0, true
		}

		return 0, false
	}
}

// isInteger reports whether v holds a number without fractional part that
// fits in an int64.
func (v *Value) isInteger() bool {
	return v.Kind() == KindNumber &&
		v.num == math.Trunc(v.num) &&
		v.num >= math.MinInt64 && v.num < 1<<63
}

// Native converts v into plain Go values: nil, bool, float64, string,
// []any, and map[string]any. Expression references convert to nil.
// Object member order is lost; use [Value.MarshalJSON] or
// [Value.MarshalYAML] to keep it.
func (v *Value) Native() any {
	switch v.Kind() {
	case KindBool:
		return v.flag
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}

		return out
	case KindObject:
		out := make(map[string]any, len(v.items))
		for i, key := range v.keys {
			out[key] = v.items[i].Native()
		}

		return out
	default:
		return nil
	}
}
