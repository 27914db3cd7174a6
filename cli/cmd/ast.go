package cmd

import (
	"context"
	"log/slog"
)

// AST prints the parsed tree of an expression.
type AST struct {
	Registry registryFlags `embed:""`

	Indent int `default:"2" help:"Indent width per tree level."`

	Expression string `arg:"" help:"JMESPath expression." name:"expression"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	q, err := a.Registry.compile(a.Expression)
	if err != nil {
		return err
	}

	_, stdout := stdioFrom(ctx)

	err = q.AST().Print(stdout, max(a.Indent, 1))
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("command", "ast"))
	}

	return nil
}
