package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// CurrentVersion is the configuration format version written by Init.
const CurrentVersion = "1"

// Config is the complete pagesmith configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	LayoutsDir string           `yaml:"layouts_dir,omitempty"`
	StaticDir  string           `yaml:"static_dir"`
	Output     OutputConfig     `yaml:"output"`
	Build      BuildConfig      `yaml:"build"`
	Blog       BlogConfig       `yaml:"blog"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy"`
	TOC        TOCConfig        `yaml:"toc"`
	References ReferencesConfig `yaml:"references"`
	Nav        []NavItem        `yaml:"nav,omitempty"`
	Serve      ServeConfig      `yaml:"serve"`
	Notify     NotifyConfig     `yaml:"notify"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Path of the file this configuration was read from, empty for defaults.
	Source string `yaml:"-"`
}

// SiteConfig holds site-wide metadata exposed to templates.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url"`
	Author      string `yaml:"author,omitempty"`
	Language    string `yaml:"language"`
}

// ContentConfig locates the document tree.
type ContentConfig struct {
	Dir       string `yaml:"dir"`
	DraftsDir string `yaml:"drafts_dir"` // directory name whose documents are drafts
	GitDates  bool   `yaml:"git_dates"`  // derive updated dates from git history
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean"` // remove files not produced by the build
}

// BuildConfig controls what a build publishes.
type BuildConfig struct {
	IncludeDrafts bool `yaml:"include_drafts"`
	IncludeFuture bool `yaml:"include_future"`
	StrictLinks   bool `yaml:"strict_links"`
}

// BlogConfig controls the post routes and the blog index.
type BlogConfig struct {
	Route    string `yaml:"route"`
	PageSize int    `yaml:"page_size"` // 0 disables pagination
}

// TaxonomyConfig toggles generated taxonomy pages.
type TaxonomyConfig struct {
	Tags bool `yaml:"tags"`
}

// TOCConfig bounds the heading levels listed in a table of contents.
type TOCConfig struct {
	MinLevel int `yaml:"min_level"`
	MaxLevel int `yaml:"max_level"`
}

// ReferencesConfig controls cross-reference strictness.
type ReferencesConfig struct {
	AllowPlaceholders bool `yaml:"allow_placeholders"`
}

// NavItem is one entry of the site navigation.
type NavItem struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Weight int    `yaml:"weight,omitempty"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	LiveReload   bool          `yaml:"live_reload"`
	Debounce     time.Duration `yaml:"debounce"`
	RebuildEvery time.Duration `yaml:"rebuild_every"` // 0 disables scheduled rebuilds
	Metrics      bool          `yaml:"metrics"`
}

// NotifyConfig configures build notifications.
type NotifyConfig struct {
	NATSURL      string           `yaml:"nats_url,omitempty"`
	Subject      string           `yaml:"subject"`
	MaxRetries   int              `yaml:"max_retries"`
	RetryBackoff RetryBackoffMode `yaml:"retry_backoff"`
	RetryInitial time.Duration    `yaml:"retry_initial"`
	RetryMax     time.Duration    `yaml:"retry_max"`
}

// RetryBackoffMode selects how the delay between publish retries grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Version:    CurrentVersion,
		Output:     OutputConfig{Clean: true},
		Taxonomy:   TaxonomyConfig{Tags: true},
		References: ReferencesConfig{AllowPlaceholders: true},
		Serve:      ServeConfig{LiveReload: true},
		Notify:     NotifyConfig{MaxRetries: 2},
	}
	if err := applyDefaults(cfg); err != nil {
		panic(err) // defaults never fail
	}
	return cfg
}

// Load reads a configuration file. A missing file yields the defaults so a
// bare content directory builds without any setup.
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	cfg := Default()
	data, err := os.ReadFile(configPath) // #nosec G304 -- path comes from the CLI
	if os.IsNotExist(err) {
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
		return cfg, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithPath(configPath).Fatal().Build()
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithPath(configPath).Fatal().Build()
	}
	cfg.Source = configPath

	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version %q (expected %s)", cfg.Version, CurrentVersion)).
			WithPath(configPath).Build()
	}

	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	cfg.resolvePaths(filepath.Dir(configPath))
	return cfg, nil
}

// resolvePaths makes relative directories relative to the config file.
func (c *Config) resolvePaths(base string) {
	if base == "" || base == "." {
		return
	}
	for _, p := range []*string{&c.Content.Dir, &c.LayoutsDir, &c.StaticDir, &c.Output.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
