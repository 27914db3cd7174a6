package jmespath

import (
	"reflect"
	"sort"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func resultTypeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}

// countNodes returns the number of nodes in the tree rooted at n.
func countNodes(n *Node) int {
	if n == nil {
		return 0
	}

	count := 1
	for child := range n.children() {
		count += countNodes(child)
	}

	return count
}
