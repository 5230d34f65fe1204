package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Fix    bool   `help:"Add missing uids and refresh fingerprints"`
	DryRun bool   `help:"Show what would be fixed without applying changes (requires --fix)"`
	Path   string `arg:"" optional:"" help:"Content directory to lint (defaults to content.dir)" type:"path"`
}

// Run lints the content tree. Exit status is 2 for errors and 1 for
// warnings (unless --quiet).
func (l *LintCmd) Run(g *Global, root *CLI) error {
	if l.DryRun && !l.Fix {
		return errors.ValidationError("--dry-run requires --fix").Build()
	}
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	path := l.Path
	if path == "" {
		path = cfg.Content.Dir
	}
	if _, err := os.Stat(path); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "content directory not found").WithPath(path).Build()
	}
	ctx := context.Background()

	if l.Fix {
		fx := &lint.Fixer{DryRun: l.DryRun, Now: g.Now, Logger: g.Logger}
		res, err := fx.FixPath(ctx, path)
		if err != nil {
			return err
		}
		verb := "Updated"
		if l.DryRun {
			verb = "Would update"
		}
		_, _ = fmt.Fprintf(g.Stdout, "%s %d file(s): %d uid(s) added, %d fingerprint(s) refreshed\n",
			verb, len(res.FilesModified), res.UIDsAdded, res.Fingerprints)
		for _, ferr := range res.Errors {
			_, _ = fmt.Fprintf(g.Stderr, "  %v\n", ferr)
		}
		if len(res.Errors) > 0 {
			g.ExitCode = 2
			return nil
		}
	}

	linter := lint.NewLinter(&lint.Config{
		Quiet:             l.Quiet,
		Format:            l.Format,
		AllowPlaceholders: cfg.References.AllowPlaceholders,
		DraftsDir:         cfg.Content.DraftsDir,
	})
	result, err := linter.LintPath(ctx, path)
	if err != nil {
		return err
	}
	if err := lint.NewFormatter(l.Format).Format(g.Stdout, result, path); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "formatting output").Build()
	}
	g.ExitCode = result.ExitCode()
	return nil
}
