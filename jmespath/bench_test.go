package jmespath

import (
	"strconv"
	"testing"
)

const benchExpr = "people[?age > `30`].{name: name, tags: sort(tags)} | sort_by(@, &name)[:10]"

func benchDoc(n int) *Value {
	people := make([]any, n)
	for i := range people {
		people[i] = map[string]any{
			"name": "p" + strconv.Itoa(n-i),
			"age":  i % 60,
			"tags": []any{"b", "a", "c"},
		}
	}

	return MustValue(map[string]any{"people": people})
}

func BenchmarkCompile(b *testing.B) {
	for b.Loop() {
		if _, err := Compile(benchExpr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCache_Compile(b *testing.B) {
	c := NewCache(16)

	for b.Loop() {
		if _, err := c.Compile(benchExpr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	for _, n := range []int{10, 1000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			q := MustCompile(benchExpr)
			doc := benchDoc(n)

			for b.Loop() {
				if _, err := q.Search(doc); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkToValue(b *testing.B) {
	data := map[string]any{"a": []any{1, 2, 3}, "b": map[string]any{"c": "d"}}

	for b.Loop() {
		if _, err := ToValue(data); err != nil {
			b.Fatal(err)
		}
	}
}
