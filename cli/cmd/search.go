package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/jmes/ext"
	"github.com/ardnew/jmes/jmespath"
	"github.com/ardnew/jmes/log"
)

// registryFlags selects the function library available to expressions.
type registryFlags struct {
	Expr bool `default:"true" help:"Register the expr(source, env) extension function." negatable:""`
}

// registry returns a fresh registry holding the built-ins and the enabled
// extensions.
func (f registryFlags) registry() *jmespath.Registry {
	r := jmespath.Builtins()
	if f.Expr {
		ext.RegisterExpr(r, ext.WithExprLogger(log.Default()))
	}

	return r
}

// compile compiles expr against the selected registry. Failures wrap
// [ErrCompile] and carry a caret snippet locating the error.
func (f registryFlags) compile(expr string) (*jmespath.Query, error) {
	q, err := f.registry().Compile(expr, jmespath.WithLogger(log.Default()))
	if err != nil {
		e := ErrCompile.Wrap(err).With(slog.String("expression", expr))

		var jerr *jmespath.Error
		if errors.As(err, &jerr) {
			e = e.With(slog.String("snippet", jerr.Snippet()))
		}

		return nil, e
	}

	return q, nil
}

// Search evaluates an expression against each input document and prints
// the results.
type Search struct {
	Registry registryFlags `embed:""`

	Input   string `default:"auto" enum:"auto,json,yaml" help:"Input document format."                           short:"i"`
	Output  string `default:"json" enum:"json,yaml"      help:"Output format."                                    short:"o"`
	Indent  int    `default:"2"                          help:"Indent width for formatted output."`
	Compact bool   `                                     help:"Write JSON on a single line."                      short:"c"`
	Raw     bool   `                                     help:"Write string results without quotes."              short:"r"`

	Expression string   `arg:"" help:"JMESPath expression."                                name:"expression"`
	Files      []string `arg:"" help:"Input documents, or '-' for stdin (default stdin)." name:"file"       optional:""`
}

// Run executes the search command.
func (s *Search) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	q, err := s.Registry.compile(s.Expression)
	if err != nil {
		return err
	}

	stdin, stdout := stdioFrom(ctx)

	srcs, closeAll, err := openSources(s.Files, stdin)
	if err != nil {
		return ErrReadInput.Wrap(err)
	}
	defer closeAll()

	enc := encoder{
		format:  s.Output,
		indent:  s.Indent,
		compact: s.Compact,
		raw:     s.Raw,
	}

	for _, src := range srcs {
		doc, err := decode(src.r, s.Input)
		if err != nil {
			return ErrReadInput.Wrap(err).With(slog.String("file", src.name))
		}

		result, err := q.SearchContext(ctx, doc)
		if err != nil {
			return ErrSearch.Wrap(err).With(
				slog.String("expression", s.Expression),
				slog.String("file", src.name),
			)
		}

		log.TraceContext(ctx, "search result",
			slog.String("file", src.name),
			slog.String("kind", result.Kind().String()),
		)

		err = enc.encode(stdout, result)
		if err != nil {
			return err
		}
	}

	return nil
}
