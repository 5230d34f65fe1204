package config

import "time"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&siteDefaults{},
		&pathDefaults{},
		&renderDefaults{},
		&serveDefaults{},
		&loggingDefaults{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "My Portfolio"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}
	if cfg.Blog.Route == "" {
		cfg.Blog.Route = "/blog/"
	}
	if cfg.Blog.PageSize < 0 {
		cfg.Blog.PageSize = 0
	}
	if len(cfg.Nav) == 0 {
		cfg.Nav = []NavItem{
			{Name: "Home", URL: "/", Weight: 1},
			{Name: "Experience", URL: "/experience/", Weight: 2},
			{Name: "Projects", URL: "/projects/", Weight: 3},
			{Name: "Blog", URL: cfg.Blog.Route, Weight: 4},
		}
	}
	return nil
}

type pathDefaults struct{}

func (pathDefaults) Domain() string { return "paths" }

func (pathDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "content"
	}
	if cfg.Content.DraftsDir == "" {
		cfg.Content.DraftsDir = "_drafts"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "static"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "public"
	}
	return nil
}

type renderDefaults struct{}

func (renderDefaults) Domain() string { return "render" }

func (renderDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.TOC.MinLevel <= 0 {
		cfg.TOC.MinLevel = 1
	}
	if cfg.TOC.MaxLevel <= 0 || cfg.TOC.MaxLevel > 6 {
		cfg.TOC.MaxLevel = 6
	}
	if cfg.TOC.MinLevel > 6 {
		cfg.TOC.MinLevel = 6
	}
	return nil
}

type serveDefaults struct{}

func (serveDefaults) Domain() string { return "serve" }

func (serveDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Host == "" {
		cfg.Serve.Host = "127.0.0.1"
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 1313
	}
	if cfg.Serve.Debounce <= 0 {
		cfg.Serve.Debounce = 300 * time.Millisecond
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "pagesmith.site.built"
	}
	if cfg.Notify.RetryBackoff == "" {
		cfg.Notify.RetryBackoff = RetryBackoffExponential
	}
	if cfg.Notify.RetryInitial <= 0 {
		cfg.Notify.RetryInitial = 500 * time.Millisecond
	}
	if cfg.Notify.RetryMax <= 0 {
		cfg.Notify.RetryMax = 5 * time.Second
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}
