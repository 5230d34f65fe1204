package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Override output.dir" type:"path"`
	BaseURL     string `name:"base-url" help:"Override site.base_url"`
	Drafts      bool   `short:"D" help:"Include drafts"`
	Future      bool   `short:"F" help:"Include posts dated in the future"`
	StrictLinks bool   `name:"strict-links" help:"Fail the build on broken internal links"`
	NoClean     bool   `name:"no-clean" help:"Keep files in the output directory that the build does not produce"`
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		cfg.Output.Dir = b.Output
	}
	if b.BaseURL != "" {
		cfg.Site.BaseURL = b.BaseURL
	}
	cfg.Build.IncludeDrafts = cfg.Build.IncludeDrafts || b.Drafts
	cfg.Build.IncludeFuture = cfg.Build.IncludeFuture || b.Future
	cfg.Build.StrictLinks = cfg.Build.StrictLinks || b.StrictLinks
	if b.NoClean {
		cfg.Output.Clean = false
	}
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	b.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pub := newPublisher(cfg, g.Logger)
	defer func() { _ = pub.Close() }()

	report, err := newBuilder(cfg, g, metrics.NoopRecorder{}, pub).Build(ctx)
	if err != nil {
		return err
	}
	printReport(g, report)
	return nil
}

func printReport(g *Global, r *site.Report) {
	_, _ = fmt.Fprintf(g.Stdout, "Built %d routes from %d documents into %s in %s\n",
		len(r.Routes), r.Documents, r.OutputDir, r.Duration.Round(time.Millisecond))
	if r.Drafts > 0 || r.Scheduled > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "  skipped %d draft(s) and %d scheduled post(s)\n", r.Drafts, r.Scheduled)
	}
	if r.Placeholders > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "  %d placeholder reference(s) rendered as text\n", r.Placeholders)
	}
	for _, bl := range r.BrokenLinks {
		_, _ = fmt.Fprintf(g.Stdout, "  warning: %s links to %s (%s)\n", bl.Page, bl.URL, bl.Reason)
	}
}
