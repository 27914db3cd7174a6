// Package ext provides optional function packs for [jmespath.Registry].
//
// Packs are installed through the public registration API, so they behave
// exactly like functions a host program registers itself:
//
//	r := ext.RegisterExpr(jmespath.Builtins())
//	q, err := r.Compile("items[?expr('price * qty > 100', @)].id")
//
// # expr
//
// RegisterExpr adds a function evaluating an expr-lang program against an
// object:
//
//	expr(source: string, env?: object|null) -> any
//
// The members of env become the program's variables. Programs are compiled
// once per distinct source and shared between searches. Compile and run
// failures are reported as [jmespath.ErrInvalidValue] with the program source
// attached.
package ext
