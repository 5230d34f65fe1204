package config

import (
	"fmt"
	"net/url"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Validate checks cross-field constraints after defaults are applied.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{v.validatePaths, v.validateTOC, v.validateSite, v.validateServe} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validatePaths() error {
	content := filepath.Clean(cv.config.Content.Dir)
	output := filepath.Clean(cv.config.Output.Dir)
	if content == output {
		return invalid("output.dir", "output directory must differ from content directory")
	}
	if output == "." || output == "/" {
		return invalid("output.dir", fmt.Sprintf("refusing to write output into %q", output))
	}
	return nil
}

func (cv *configurationValidator) validateTOC() error {
	toc := cv.config.TOC
	if toc.MinLevel > toc.MaxLevel {
		return invalid("toc.min_level", fmt.Sprintf("min_level %d exceeds max_level %d", toc.MinLevel, toc.MaxLevel))
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	if cv.config.Site.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(cv.config.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("site.base_url", fmt.Sprintf("base_url %q must be an absolute URL", cv.config.Site.BaseURL))
	}
	return nil
}

func (cv *configurationValidator) validateServe() error {
	if p := cv.config.Serve.Port; p < 0 || p > 65535 {
		return invalid("serve.port", fmt.Sprintf("port %d out of range", p))
	}
	if cv.config.Serve.RebuildEvery < 0 {
		return invalid("serve.rebuild_every", "rebuild interval cannot be negative")
	}
	if cv.config.Notify.MaxRetries < 0 {
		return invalid("notify.max_retries", "max retries cannot be negative")
	}
	return nil
}

func invalid(field, msg string) error {
	return errors.ConfigError(msg).WithContext(errors.ContextField, field).Build()
}
