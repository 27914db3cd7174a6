package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jmes/cli/cmd"
	"github.com/ardnew/jmes/pkg"
)

// CLI is the top-level command-line interface for jmes.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Search cmd.Search `cmd:"" default:"withargs" help:"Search documents with an expression"`
	AST    cmd.AST    `cmd:""                    help:"Print the parsed tree of an expression" name:"ast"`
	Funcs  cmd.Funcs  `cmd:""                    help:"List available functions"`
	Repl   cmd.Repl   `cmd:""                    help:"Query a document interactively"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the jmes CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cli CLI

	// Logging flags are applied before parsing so that parse errors and the
	// config loader already honor them.
	cli.Log.scan(args)

	// Commands receive ctx after the parsed kong context is attached below.
	parser, err := cli.parser(exit, func() context.Context { return ctx })
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}

// vars returns the interpolation variables referenced by flag tags.
func (c *CLI) vars() kong.Vars {
	return kong.Vars{
		"version":            pkg.Name + " " + pkg.Version,
		cmd.ConfigIdentifier: configPath(configFile),
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars())
}

func (c *CLI) parser(exit func(int), ctx func() context.Context) (*kong.Kong, error) {
	return kong.New(c,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.BindSingletonProvider(ctx),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(resolve(baseConfig), configPath(configFile)),
		c.vars(),
	)
}
