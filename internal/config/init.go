package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithPath(configPath).Build()
	}

	example := Default()
	example.Site = SiteConfig{
		Title:       "Jane Doe",
		Description: "Portfolio and notes",
		BaseURL:     "https://example.com",
		Author:      "Jane Doe",
		Language:    "en",
	}
	example.Notify.NATSURL = "${PAGESMITH_NATS_URL}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").WithPath(dir).Build()
		}
	}
	// #nosec G306 -- config file is meant to be readable
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").WithPath(configPath).Build()
	}
	return nil
}
