package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tmpl/cli/cmd"
	"github.com/ardnew/tmpl/pkg"
)

// configFile is the base name of the configuration file in [pkg.ConfigDir].
const configFile = "config.yaml"

const dirMode os.FileMode = 0o700

// CLI is the top-level command-line interface for tmpl.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render templates against data"`
	Check  cmd.Check  `cmd:""                    help:"Compile templates and report errors"`
	Dump   cmd.Dump   `cmd:""                    help:"Print a template tree or the data context"`
	Init   cmd.Init   `cmd:""                    help:"Write the configuration file from current flags"`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive template session"`
}

// Run executes the tmpl CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return cmd.ErrRuntimeDir.Wrap(err)
		}
	}

	configPath := pkg.ConfigPath(configFile)

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configPath,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.VersionIdentifier: pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags apply before parsing so that parse errors and the config
	// resolver log with the requested settings.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, configPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run(&cli)
}
