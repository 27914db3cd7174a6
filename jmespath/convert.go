package jmespath

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Valuer is implemented by host types that convert themselves into a
// [Value] without going through the generic serialization path.
type Valuer interface {
	ToValue() (*Value, error)
}

// ToValue converts host data into a [Value].
//
// Values, [Valuer] implementations, JSON scalars, slices and maps of them,
// [json.Number], [json.RawMessage], and goccy/go-yaml ordered maps take a
// direct path. Anything else is serialized with [encoding/json] and decoded
// back, so struct tags and custom marshalers apply.
func ToValue(data any) (*Value, error) {
	switch d := data.(type) {
	case nil:
		return null, nil
	case *Value:
		if d == nil {
			return null, nil
		}

		return d, nil
	case Valuer:
		return d.ToValue()
	case bool:
		return Bool(d), nil
	case string:
		return String(d), nil
	case float64:
		return Number(d), nil
	case float32:
		return Number(float64(d)), nil
	case int:
		return Number(float64(d)), nil
	case int8:
		return Number(float64(d)), nil
	case int16:
		return Number(float64(d)), nil
	case int32:
		return Number(float64(d)), nil
	case int64:
		return Number(float64(d)), nil
	case uint:
		return Number(float64(d)), nil
	case uint8:
		return Number(float64(d)), nil
	case uint16:
		return Number(float64(d)), nil
	case uint32:
		return Number(float64(d)), nil
	case uint64:
		return Number(float64(d)), nil
	case json.Number:
		f, err := d.Float64()
		if err != nil {
			return nil, ErrInvalidDocument.Wrap(err).
				With(slog.String("number", d.String()))
		}

		return Number(f), nil
	case json.RawMessage:
		return ParseJSON(d)
	case []*Value:
		return Array(slices.Clone(d)...), nil
	case []any:
		return convertSlice(d)
	case []string:
		items := make([]*Value, len(d))
		for i, s := range d {
			items[i] = String(s)
		}

		return Array(items...), nil
	case []float64:
		items := make([]*Value, len(d))
		for i, f := range d {
			items[i] = Number(f)
		}

		return Array(items...), nil
	case []int:
		items := make([]*Value, len(d))
		for i, n := range d {
			items[i] = Number(float64(n))
		}

		return Array(items...), nil
	case map[string]any:
		return convertMap(d)
	case map[string]*Value:
		keys := sortedKeys(d)
		members := make([]Member, len(keys))

		for i, key := range keys {
			members[i] = Member{Key: key, Value: d[key]}
		}

		return Object(members...), nil
	case map[string]string:
		keys := sortedKeys(d)
		members := make([]Member, len(keys))

		for i, key := range keys {
			members[i] = Member{Key: key, Value: String(d[key])}
		}

		return Object(members...), nil
	case yaml.MapSlice:
		return convertMapSlice(d)
	case map[any]any:
		members := make([]Member, 0, len(d))
		for key, val := range d {
			v, err := ToValue(val)
			if err != nil {
				return nil, err
			}

			members = append(members, Member{Key: fmt.Sprint(key), Value: v})
		}

		slices.SortFunc(members, func(a, b Member) int {
			switch {
			case a.Key < b.Key:
				return -1
			case a.Key > b.Key:
				return 1
			default:
				return 0
			}
		})

		return Object(members...), nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, ErrInvalidDocument.Wrap(err).
			With(slog.String("type", resultTypeName(data)))
	}

	return ParseJSON(raw)
}

// MustValue is like [ToValue] but panics on error. It is intended for
// literals in tests and examples.
func MustValue(data any) *Value {
	v, err := ToValue(data)
	if err != nil {
		panic(err)
	}

	return v
}

func convertSlice(d []any) (*Value, error) {
	items := make([]*Value, len(d))

	for i, elem := range d {
		v, err := ToValue(elem)
		if err != nil {
			return nil, err
		}

		items[i] = v
	}

	return Array(items...), nil
}

// convertMap orders members by key since Go maps carry no order.
func convertMap(d map[string]any) (*Value, error) {
	keys := sortedKeys(d)
	members := make([]Member, len(keys))

	for i, key := range keys {
		v, err := ToValue(d[key])
		if err != nil {
			return nil, err
		}

		members[i] = Member{Key: key, Value: v}
	}

	return Object(members...), nil
}

func convertMapSlice(d yaml.MapSlice) (*Value, error) {
	members := make([]Member, len(d))

	for i, item := range d {
		v, err := ToValue(item.Value)
		if err != nil {
			return nil, err
		}

		key, ok := item.Key.(string)
		if !ok {
			key = fmt.Sprint(item.Key)
		}

		members[i] = Member{Key: key, Value: v}
	}

	return Object(members...), nil
}

// ParseJSON decodes a single JSON document, keeping object members in
// document order.
func ParseJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return nil, ErrInvalidDocument.Wrap(err).
			With(slog.String("format", "json"))
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrInvalidDocument.
			With(
				slog.String("format", "json"),
				slog.Int64("offset", dec.InputOffset()),
				slog.String("issue", "trailing data"),
			)
	}

	return v, nil
}

// decodeJSON reads one value from dec using the token stream so that object
// member order survives.
func decodeJSON(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return null, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, err
		}

		return Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			var items []*Value

			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}

				items = append(items, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return Array(items...), nil
		case '{':
			var members []Member

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}

				key, _ := keyTok.(string)

				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}

				members = append(members, Member{Key: key, Value: v})
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return Object(members...), nil
		}
	}

	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// ParseYAML decodes the first document of a YAML stream, keeping mapping
// order.
func ParseYAML(data []byte) (*Value, error) {
	var doc any

	err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap())
	if err != nil {
		return nil, ErrInvalidDocument.Wrap(err).
			With(slog.String("format", "yaml"))
	}

	return ToValue(doc)
}
