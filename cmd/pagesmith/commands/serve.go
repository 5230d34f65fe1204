package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/preview"
	"git.home.luguber.info/inful/pagesmith/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Host         string `help:"Override serve.host"`
	Port         int    `short:"p" help:"Override serve.port"`
	Drafts       bool   `short:"D" help:"Include drafts"`
	Future       bool   `short:"F" help:"Include posts dated in the future"`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable browser live reload"`
	Metrics      bool   `help:"Expose Prometheus metrics at /metrics"`
}

func (s *ServeCmd) apply(cfg *config.Config) {
	if s.Host != "" {
		cfg.Serve.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	cfg.Build.IncludeDrafts = cfg.Build.IncludeDrafts || s.Drafts
	cfg.Build.IncludeFuture = cfg.Build.IncludeFuture || s.Future
	cfg.Serve.Metrics = cfg.Serve.Metrics || s.Metrics
	if s.NoLiveReload {
		cfg.Serve.LiveReload = false
	}
	// local preview links must resolve against the preview server
	cfg.Site.BaseURL = ""
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	s.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.Serve.Metrics {
		prom := metrics.NewPrometheusRecorder(nil)
		rec, metricsHandler = prom, prom.Handler()
	}

	pub := newPublisher(cfg, g.Logger)
	defer func() { _ = pub.Close() }()

	srv := preview.New(cfg, func(c *config.Config) *site.Builder {
		// reloaded configs keep the command line overrides
		s.apply(c)
		return newBuilder(c, g, rec, pub)
	}, preview.Options{Metrics: metricsHandler, Recorder: rec, Logger: g.Logger})
	return srv.Run(ctx)
}
