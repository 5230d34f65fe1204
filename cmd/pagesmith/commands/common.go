// Package commands implements the pagesmith CLI.
package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/notify"
	"git.home.luguber.info/inful/pagesmith/internal/retry"
	"git.home.luguber.info/inful/pagesmith/internal/site"
)

// Global is shared state passed to every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
	// ExitCode is used when a command succeeds but wants a non-zero status,
	// like lint reporting warnings.
	ExitCode int
}

// NewGlobal returns globals writing to the process streams.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Stdout: os.Stdout, Stderr: os.Stderr, Now: time.Now}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pagesmith.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the site into the output directory"`
	Serve  ServeCmd  `cmd:"" help:"Build, serve and rebuild on change with live reload"`
	Lint   LintCmd   `cmd:"" help:"Check content without building"`
	New    NewCmd    `cmd:"" help:"Create a new post or page"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
	Routes RoutesCmd `cmd:"" help:"Print the route table of the assembled site"`
}

// AfterApply runs after flag parsing; it sets up logging before the
// configuration is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := config.NormalizeLogLevel(os.Getenv("PAGESMITH_LOG_LEVEL")).SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration and switches logging to its settings.
// -v and PAGESMITH_LOG_LEVEL still win over the file.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logging := cfg.Logging
	if env := os.Getenv("PAGESMITH_LOG_LEVEL"); env != "" {
		logging.Level = config.NormalizeLogLevel(env)
	}
	if c.Verbose {
		logging.Level = config.LogLevelDebug
	}
	g.Logger = config.NewLogger(g.Stderr, logging)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// newPublisher connects to NATS when configured. Notifications are optional,
// so a failed connection only disables them.
func newPublisher(cfg *config.Config, logger *slog.Logger) notify.Publisher {
	if cfg.Notify.NATSURL == "" {
		return notify.NoopPublisher{}
	}
	pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		logger.Warn("Build notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		return notify.NoopPublisher{}
	}
	return notify.WithRetry(pub, retry.FromNotify(cfg.Notify))
}

func newBuilder(cfg *config.Config, g *Global, rec metrics.Recorder, pub notify.Publisher) *site.Builder {
	return site.NewBuilder(cfg,
		site.WithLogger(g.Logger),
		site.WithRecorder(rec),
		site.WithPublisher(pub),
		site.WithClock(g.Now),
	)
}
