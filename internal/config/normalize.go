package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Normalize case-folds enumerations and canonicalises routes before defaults
// and validation run. Unknown enum values are rejected here.
func Normalize(cfg *Config) error {
	if cfg.Logging.Level != "" {
		if _, err := logLevelNormalizer.Parse(string(cfg.Logging.Level)); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid logging.level").Fatal().Build()
		}
		cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	}
	if cfg.Logging.Format != "" {
		if _, err := logFormatNormalizer.Parse(string(cfg.Logging.Format)); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid logging.format").Fatal().Build()
		}
		cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	}

	if cfg.Blog.Route != "" {
		cfg.Blog.Route = NormalizeRoute(cfg.Blog.Route)
	}
	for i := range cfg.Nav {
		if u := cfg.Nav[i].URL; u != "" && !strings.Contains(u, "://") {
			cfg.Nav[i].URL = NormalizeRoute(u)
		}
	}
	cfg.Site.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Site.BaseURL), "/")
	cfg.Notify.Subject = strings.TrimSpace(cfg.Notify.Subject)
	if cfg.Notify.RetryBackoff != "" {
		mode := RetryBackoffMode(strings.ToLower(strings.TrimSpace(string(cfg.Notify.RetryBackoff))))
		switch mode {
		case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
			cfg.Notify.RetryBackoff = mode
		default:
			return errors.ConfigError(fmt.Sprintf("invalid notify.retry_backoff %q", cfg.Notify.RetryBackoff)).
				WithContext(errors.ContextField, "notify.retry_backoff").Build()
		}
	}
	return nil
}

// NormalizeRoute returns route with exactly one leading and one trailing slash.
func NormalizeRoute(route string) string {
	route = strings.Trim(strings.TrimSpace(route), "/")
	if route == "" {
		return "/"
	}
	return fmt.Sprintf("/%s/", route)
}
