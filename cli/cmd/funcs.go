package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/jmes/jmespath"
)

// Funcs lists the functions available to expressions.
type Funcs struct {
	Registry registryFlags `embed:""`

	Filter string `help:"Show only functions fuzzy-matching this pattern, best match first." short:"f"`
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context) error {
	_, stdout := stdioFrom(ctx)

	for _, fn := range f.matches(f.Registry.registry()) {
		_, err := fmt.Fprintln(stdout, fn.String())
		if err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("command", "funcs"))
		}
	}

	return nil
}

// matches returns the registered functions selected by the filter, in name
// order when no filter is set and by match rank otherwise.
func (f *Funcs) matches(r *jmespath.Registry) []*jmespath.Function {
	var fns []*jmespath.Function

	if f.Filter == "" {
		for fn := range r.All() {
			fns = append(fns, fn)
		}

		return fns
	}

	for _, m := range fuzzy.Find(f.Filter, r.Names()) {
		if fn, ok := r.Lookup(m.Str); ok {
			fns = append(fns, fn)
		}
	}

	return fns
}
