// Package jmespath compiles and evaluates JMESPath query expressions against
// semi-structured documents.
//
// An expression is compiled once into an immutable [Query] and may then be
// searched any number of times, concurrently, against independent or shared
// input documents:
//
//	q, err := jmespath.Compile("people[?age > `30`].name | sort(@)")
//	if err != nil {
//		return err
//	}
//
//	names, err := q.Search(doc)
//
// # Grammar
//
// Informal EBNF, ordered from the loosest to the tightest binding:
//
//	Expression  → Pipe
//	Pipe        → Or ( '|' Or )*
//	Or          → And ( '||' And )*
//	And         → Compare ( '&&' Compare )*
//	Compare     → Not ( ( '==' | '!=' | '<' | '<=' | '>' | '>=' ) Not )*
//	Not         → '!' Not | Chain
//	Chain       → Primary ( '.' Step | Bracket | '[]' | '[?' Expression ']' )*
//	Bracket     → '[' ( Number | Slice | '*' ) ']'
//	Primary     → Identifier | '@' | '*' | Literal | RawString
//	            | '[' Expression ( ',' Expression )* ']'
//	            | '{' Key ':' Expression ( ',' Key ':' Expression )* '}'
//	            | Identifier '(' ( Expression ( ',' Expression )* )? ')'
//	            | '&' Expression | '(' Expression ')'
//
// # Values
//
// Documents and results are represented by [*Value], an immutable tagged
// value (null, boolean, number, string, array, object, or expression
// reference). Sub-values are shared between parents without copying. Host
// data enters through [ToValue], [ParseJSON], or [ParseYAML] and leaves
// through [Value.Native], [Value.MarshalJSON], or [Value.MarshalYAML].
//
// # Projections
//
// The wildcard forms `[*]` and `*`, the flatten operator `[]`, and filters
// `[?...]` start a projection. Everything to the right of the projection, up
// to the next pipe, `||`, `&&`, comparison, closing bracket, or end of input,
// is evaluated once per element, and null results are dropped.
//
// # Functions
//
// Function calls are resolved through a [Registry]. [Builtins] returns a
// registry with the standard library installed; [Registry.Register] adds
// caller-defined functions validated against a declared [Signature].
// There is no process-wide registry: [Compile] binds each query to the
// registry given by [WithRegistry], or to a fresh [Builtins] registry.
package jmespath
