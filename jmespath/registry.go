package jmespath

import (
	"iter"
	"slices"
	"strings"
	"sync"
)

// Func implements a function callable from expressions. Arguments have
// already been checked against the function's [Signature].
type Func func(ctx *Context, args []*Value) (*Value, error)

// Function is a named, typed entry of a [Registry].
type Function struct {
	Func      Func
	Name      string
	Signature Signature
}

// String renders the call signature, e.g. "sort_by(array, expression)".
func (f *Function) String() string {
	return f.Name + "(" + f.Signature.String() + ")"
}

// Registry maps function names to implementations.
//
// A Registry is safe for concurrent use. Registering while searches are in
// flight is allowed, though a search may observe either the old or the new
// entry.
type Registry struct {
	funcs map[string]*Function
	mutex sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Builtins returns a new registry holding the standard function library.
func Builtins() *Registry {
	return NewRegistry().RegisterBuiltins()
}

// RegisterBuiltins installs the standard function library, replacing any
// functions of the same names. It returns r.
func (r *Registry) RegisterBuiltins() *Registry {
	for _, fn := range builtins() {
		r.Register(fn.Name, fn.Signature, fn.Func)
	}

	return r
}

// Register adds or replaces the function called name. It returns r.
func (r *Registry) Register(name string, sig Signature, fn Func) *Registry {
	sig.Params = slices.Clone(sig.Params)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.funcs[name] = &Function{Name: name, Signature: sig, Func: fn}

	return r
}

// Lookup returns the function called name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	if r == nil {
		return nil, false
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	fn, ok := r.funcs[name]

	return fn, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.funcs)
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return sortedKeys(r.funcs)
}

// All returns an iterator over the registered functions sorted by name.
func (r *Registry) All() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		r.mutex.RLock()
		fns := make([]*Function, 0, len(r.funcs))

		for _, fn := range r.funcs {
			fns = append(fns, fn)
		}
		r.mutex.RUnlock()

		slices.SortFunc(fns, func(a, b *Function) int {
			return strings.Compare(a.Name, b.Name)
		})

		for _, fn := range fns {
			if !yield(fn) {
				return
			}
		}
	}
}

// Compile compiles expr bound to r. It is shorthand for
// Compile(expr, WithRegistry(r), opts...).
func (r *Registry) Compile(expr string, opts ...Option) (*Query, error) {
	return Compile(expr, append([]Option{WithRegistry(r)}, opts...)...)
}
