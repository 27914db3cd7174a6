package cmd

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/jmes/cli/cmd/repl"
	"github.com/ardnew/jmes/log"
)

// Repl starts an interactive session for searching a document.
type Repl struct {
	Registry registryFlags `embed:""`

	Input string `default:"auto" enum:"auto,json,yaml" help:"Input document format." short:"i"`

	File string `arg:"" default:"-" help:"Input document, or '-' for stdin." name:"file" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdin, _ := stdioFrom(ctx)

	srcs, closeAll, err := openSources([]string{r.File}, stdin)
	if err != nil {
		return ErrReadInput.Wrap(err)
	}
	defer closeAll()

	doc, err := decode(srcs[0].r, r.Input)
	if err != nil {
		return ErrReadInput.Wrap(err).With(slog.String("file", r.File))
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	var opts []tea.ProgramOption

	// The document was read from stdin, so keystrokes must come from the
	// terminal instead.
	if srcs[0].name == stdinSource {
		opts = append(opts, tea.WithInputTTY())
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("file", r.File),
		slog.String("cache", cacheDir),
	)

	return repl.Run(ctx, repl.Config{
		Document: doc,
		Registry: r.Registry.registry(),
		CacheDir: cacheDir,
		Logger:   log.Default(),
		Options:  opts,
	})
}
