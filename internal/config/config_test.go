package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pagesmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, "public", cfg.Output.Dir)
	assert.Equal(t, "/blog/", cfg.Blog.Route)
	assert.True(t, cfg.References.AllowPlaceholders)
	assert.True(t, cfg.Taxonomy.Tags)
	assert.Equal(t, 1313, cfg.Serve.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.Serve.Debounce)
	assert.Equal(t, 2, cfg.Notify.MaxRetries)
	assert.Equal(t, RetryBackoffExponential, cfg.Notify.RetryBackoff)
	assert.Len(t, cfg.Nav, 4)
	assert.Empty(t, cfg.Source)
}

func TestLoad_ParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `version: "1"
site:
  title: Portfolio
  base_url: https://example.com/
content:
  dir: posts
output:
  dir: out
  clean: false
blog:
  route: writing
references:
  allow_placeholders: false
serve:
  rebuild_every: 10m
logging:
  level: WARNING
  format: JSON
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, "Portfolio", cfg.Site.Title)
	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
	assert.Equal(t, filepath.Join(dir, "posts"), cfg.Content.Dir)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Output.Dir)
	assert.False(t, cfg.Output.Clean)
	assert.Equal(t, "/writing/", cfg.Blog.Route)
	assert.False(t, cfg.References.AllowPlaceholders)
	assert.True(t, cfg.Taxonomy.Tags, "unset booleans keep their defaults")
	assert.Equal(t, 10*time.Minute, cfg.Serve.RebuildEvery)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PAGESMITH_TEST_TITLE", "From Env")
	cfg, err := Load(writeConfig(t, "version: \"1\"\nsite:\n  title: ${PAGESMITH_TEST_TITLE}\n"))
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Site.Title)
}

func TestLoad_DotEnvFillsGaps(t *testing.T) {
	path := writeConfig(t, "version: \"1\"\nnotify:\n  nats_url: ${PAGESMITH_TEST_NATS}\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("PAGESMITH_TEST_NATS=nats://env:4222\n"), 0o600))
	t.Setenv("PAGESMITH_TEST_NATS", "")
	require.NoError(t, os.Unsetenv("PAGESMITH_TEST_NATS"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://env:4222", cfg.Notify.NATSURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "bad version", body: "version: \"9\"\n"},
		{name: "bad yaml", body: "version: [\n"},
		{name: "bad log level", body: "version: \"1\"\nlogging:\n  level: loud\n"},
		{name: "toc bounds", body: "version: \"1\"\ntoc:\n  min_level: 4\n  max_level: 2\n", field: "toc.min_level"},
		{name: "same dirs", body: "version: \"1\"\ncontent:\n  dir: site\noutput:\n  dir: site\n", field: "output.dir"},
		{name: "relative base url", body: "version: \"1\"\nsite:\n  base_url: example.com\n", field: "site.base_url"},
		{name: "retry backoff", body: "version: \"1\"\nnotify:\n  retry_backoff: sometimes\n", field: "notify.retry_backoff"},
		{name: "negative retries", body: "version: \"1\"\nnotify:\n  max_retries: -1\n", field: "notify.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
			if tt.field != "" {
				ce, ok := errors.AsClassified(err)
				require.True(t, ok)
				field, _ := ce.Context().GetString(errors.ContextField)
				assert.Equal(t, tt.field, field)
			}
		})
	}
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagesmith.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	t.Setenv("PAGESMITH_NATS_URL", "nats://localhost:4222")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
	assert.Equal(t, "nats://localhost:4222", cfg.Notify.NATSURL)
}

func TestNormalizeRoute(t *testing.T) {
	for in, want := range map[string]string{"": "/", "/": "/", "blog": "/blog/", "/blog": "/blog/", "blog/": "/blog/", " /a/b/ ": "/a/b/"} {
		assert.Equal(t, want, NormalizeRoute(in), in)
	}
}
