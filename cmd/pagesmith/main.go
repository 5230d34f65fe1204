package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagesmith/cmd/pagesmith/commands"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

func main() {
	cli := &commands.CLI{}
	globals := commands.NewGlobal()
	ctx := kong.Parse(cli,
		kong.Name("pagesmith"),
		kong.Description("Static site builder for a personal portfolio and blog."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(globals),
	)

	if err := ctx.Run(globals, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, globals.Logger).HandleError(err)
	}
	os.Exit(globals.ExitCode)
}
