package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/notify"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	Drafts bool `short:"D" help:"Include drafts"`
	Future bool `short:"F" help:"Include posts dated in the future"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	cfg.Build.IncludeDrafts = cfg.Build.IncludeDrafts || r.Drafts
	cfg.Build.IncludeFuture = cfg.Build.IncludeFuture || r.Future

	_, s, err := newBuilder(cfg, g, metrics.NoopRecorder{}, notify.NoopPublisher{}).Assemble(context.Background())
	if err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ROUTE", "KIND", "LAYOUT", "FILE", "SOURCE")
	for _, route := range s.Routes {
		t.Row(route.Path, route.Kind.String(), route.Layout, route.File(), route.Source())
	}
	_, _ = fmt.Fprintln(g.Stdout, t.Render())
	_, _ = fmt.Fprintf(g.Stdout, "%d routes\n", len(s.Routes))
	return nil
}
