package jmespath

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

const hexDigits = "0123456789abcdef"

// String returns the compact JSON encoding of v.
func (v *Value) String() string { return string(v.AppendJSON(nil)) }

// MarshalJSON implements [encoding/json.Marshaler]. Object members are
// written in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) { return v.AppendJSON(nil), nil }

// AppendJSON appends the compact JSON encoding of v to b.
// Expression references and non-finite numbers encode as null.
func (v *Value) AppendJSON(b []byte) []byte {
	switch v.Kind() {
	case KindBool:
		return strconv.AppendBool(b, v.flag)
	case KindNumber:
		return appendNumber(b, v.num)
	case KindString:
		return appendString(b, v.str)
	case KindArray:
		b = append(b, '[')
		for i, item := range v.items {
			if i > 0 {
				b = append(b, ',')
			}

			b = item.AppendJSON(b)
		}

		return append(b, ']')
	case KindObject:
		b = append(b, '{')
		for i, key := range v.keys {
			if i > 0 {
				b = append(b, ',')
			}

			b = appendString(b, key)
			b = append(b, ':')
			b = v.items[i].AppendJSON(b)
		}

		return append(b, '}')
	default:
		return append(b, "null"...)
	}
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler. Objects are
// emitted as ordered mappings and integral numbers as integers.
func (v *Value) MarshalYAML() (any, error) {
	switch v.Kind() {
	case KindBool:
		return v.flag, nil
	case KindNumber:
		if v.isInteger() {
			return int64(v.num), nil
		}

		return v.num, nil
	case KindString:
		return v.str, nil
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item
		}

		return out, nil
	case KindObject:
		out := make(yaml.MapSlice, len(v.items))
		for i, key := range v.keys {
			out[i] = yaml.MapItem{Key: key, Value: v.items[i]}
		}

		return out, nil
	default:
		return nil, nil
	}
}

// appendNumber formats f the way encoding/json does for float64, except that
// non-finite values become null.
func appendNumber(b []byte, f float64) []byte {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return append(b, "null"...)
	}

	abs := math.Abs(f)
	format := byte('f')

	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	b = strconv.AppendFloat(b, f, format, -1, 64)

	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}

	return b
}

// appendString appends s as a JSON string literal. Unlike encoding/json it
// does not escape HTML-significant characters.
func appendString(b []byte, s string) []byte {
	b = append(b, '"')

	start := 0

	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++

				continue
			}

			b = append(b, s[start:i]...)

			switch c {
			case '"', '\\':
				b = append(b, '\\', c)
			case '\n':
				b = append(b, '\\', 'n')
			case '\r':
				b = append(b, '\\', 'r')
			case '\t':
				b = append(b, '\\', 't')
			default:
				b = append(b, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			}

			i++
			start = i

			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b = append(b, s[start:i]...)
			b = append(b, `�`...)
			i += size
			start = i

			continue
		}

		i += size
	}

	b = append(b, s[start:]...)

	return append(b, '"')
}
