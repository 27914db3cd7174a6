package jmespath

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/goccy/go-yaml"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type celsius float64

func (c celsius) ToValue() (*Value, error) {
	return Object(
		Member{Key: "celsius", Value: Number(float64(c))},
		Member{Key: "fahrenheit", Value: Number(float64(c)*9/5 + 32)},
	), nil
}

func TestToValue(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"int", 7, "7"},
		{"uint64", uint64(8), "8"},
		{"float32", float32(0.5), "0.5"},
		{"string", "s", `"s"`},
		{"json number", json.Number("12"), "12"},
		{"raw message", json.RawMessage(`{"b":1,"a":2}`), `{"b":1,"a":2}`},
		{"slice", []any{1, "a", nil}, `[1,"a",null]`},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"int slice", []int{1, 2}, `[1,2]`},
		{"map sorted", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"string map", map[string]string{"k": "v"}, `{"k":"v"}`},
		{"map slice", yaml.MapSlice{{Key: "z", Value: 1}, {Key: 2, Value: "two"}}, `{"z":1,"2":"two"}`},
		{"any map", map[any]any{"b": 1, 1: "one"}, `{"1":"one","b":1}`},
		{"struct fallback", point{X: 1, Y: 2}, `{"x":1,"y":2}`},
		{"struct slice fallback", []point{{X: 1}}, `[{"x":1,"y":0}]`},
		{"valuer", celsius(100), `{"celsius":100,"fahrenheit":212}`},
		{"value", Array(Number(1)), `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToValue(tt.data)
			if err != nil {
				t.Fatalf("ToValue() error: %v", err)
			}

			if got.String() != tt.want {
				t.Errorf("ToValue() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToValue_Unsupported(t *testing.T) {
	_, err := ToValue(make(chan int))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestParseJSON_PreservesOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"zeta": 1, "alpha": {"y": [1, 2.5, -3e2], "x": null}}`))
	if err != nil {
		t.Fatalf("ParseJSON() error: %v", err)
	}

	want := `{"zeta":1,"alpha":{"y":[1,2.5,-300],"x":null}}`
	if got := v.String(); got != want {
		t.Errorf("ParseJSON() = %s, want %s", got, want)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"truncated", `{"a":`},
		{"trailing", `{} {}`},
		{"bare word", `foo`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	input := `
name: example
replicas: 3
ports:
  - 80
  - 443
labels:
  tier: web
  app: shop
enabled: true
`

	v, err := ParseYAML([]byte(input))
	if err != nil {
		t.Fatalf("ParseYAML() error: %v", err)
	}

	want := `{"name":"example","replicas":3,"ports":[80,443],"labels":{"tier":"web","app":"shop"},"enabled":true}`
	if got := v.String(); got != want {
		t.Errorf("ParseYAML() = %s, want %s", got, want)
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("a: [1, 2"))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}
