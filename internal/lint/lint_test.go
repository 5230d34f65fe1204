package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return root
}

func lint(t *testing.T, root string, cfg *Config) *Result {
	t.Helper()
	res, err := NewLinter(cfg).LintPath(context.Background(), root)
	require.NoError(t, err)
	return res
}

// rulesFor returns "rule:severity" for every issue of rel.
func rulesFor(res *Result, rel string) []string {
	var out []string
	for _, issue := range res.Issues {
		if issue.FilePath == rel {
			out = append(out, issue.Rule+":"+issue.Severity.String())
		}
	}
	return out
}

func validSite() map[string]string {
	return map[string]string{
		"index.md":                  "---\ntitle: Home\nlayout: home\n---\nHi. See [enums](ref:enums).\n",
		"blog/2024-01-01-enums.md":  "---\ntitle: Enums\nlayout: post\nseries_next: traits\n---\nEnums.\n",
		"blog/2024-02-01-traits.md": "---\ntitle: Traits\nlayout: post\nseries_prev: enums\n---\nBack to [enums](enums.md).\n",
	}
}

func fixAll(t *testing.T, root string) *FixResult {
	t.Helper()
	fx := &Fixer{Now: func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }}
	res, err := fx.FixPath(context.Background(), root)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	return res
}

func TestLintPath_FixedSiteIsClean(t *testing.T) {
	root := writeTree(t, validSite())

	before := lint(t, root, nil)
	assert.False(t, before.HasErrors())
	assert.False(t, before.HasWarnings())
	assert.Equal(t, 6, before.InfoCount(), "uid and fingerprint missing on each file")

	fixed := fixAll(t, root)
	assert.Len(t, fixed.FilesModified, 3)
	assert.Equal(t, 3, fixed.UIDsAdded)
	assert.Equal(t, 3, fixed.Fingerprints)

	after := lint(t, root, nil)
	assert.Empty(t, after.Issues)
	assert.Equal(t, 3, after.FilesTotal)
	assert.Equal(t, 0, after.ExitCode())

	again := fixAll(t, root)
	assert.False(t, again.HasChanges(), "fixing is idempotent")

	data, err := os.ReadFile(filepath.Join(root, "blog", "2024-01-01-enums.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "lastmod:")
	assert.Contains(t, string(data), "2025-01-02")
	assert.Contains(t, string(data), "uid: ")
	assert.True(t, strings.HasSuffix(string(data), "---\nEnums.\n"))
}

func TestLintPath_StaleFingerprint(t *testing.T) {
	root := writeTree(t, validSite())
	fixAll(t, root)

	p := filepath.Join(root, "blog", "2024-01-01-enums.md")
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, append(data, "More text.\n"...), 0o600))

	res := lint(t, root, nil)
	assert.Equal(t, []string{"fingerprint:WARNING"}, rulesFor(res, "blog/2024-01-01-enums.md"))
	assert.Equal(t, 1, res.ExitCode())
}

func TestLintPath_Problems(t *testing.T) {
	files := validSite()
	files["no-frontmatter.md"] = "# Just a heading\n"
	files["unclosed.md"] = "---\ntitle: Oops\n"
	files["untitled.md"] = "---\nlayout: page\n---\nx\n"
	files["badlayout.md"] = "---\ntitle: X\nlayout: gallery\n---\nx\n"
	files["baddate.md"] = "---\ntitle: X\nlayout: page\ndate: yesterday\n---\nx\n"
	files["blog/enums.md"] = "---\ntitle: Enums again\nlayout: post\n---\nx\n"
	files["blog/2024-03-01-part-3.md"] = "---\ntitle: Part 3\nlayout: post\nseries_prev: part-2\nseries_next: TODO\n---\nSee [later](#) and [gone](ref:nowhere).\n"
	root := writeTree(t, files)

	res := lint(t, root, &Config{Quiet: true, AllowPlaceholders: true})

	assert.Equal(t, []string{"frontmatter:ERROR"}, rulesFor(res, "no-frontmatter.md"))
	assert.Equal(t, []string{"frontmatter:ERROR"}, rulesFor(res, "unclosed.md"))
	assert.Equal(t, []string{"required-fields:ERROR"}, rulesFor(res, "untitled.md"))
	assert.Equal(t, []string{"layout:ERROR"}, rulesFor(res, "badlayout.md"))
	assert.Equal(t, []string{"date-format:ERROR"}, rulesFor(res, "baddate.md"))
	assert.Equal(t, []string{"duplicate-slug:ERROR"}, rulesFor(res, "blog/enums.md"))
	assert.Equal(t, []string{"duplicate-slug:ERROR"}, rulesFor(res, "blog/2024-01-01-enums.md"))
	assert.ElementsMatch(t, []string{"broken-reference:ERROR", "broken-reference:ERROR"},
		rulesFor(res, "blog/2024-03-01-part-3.md"), "quiet mode hides placeholder warnings")
	assert.Equal(t, 2, res.ExitCode())

	var msgs []string
	for _, issue := range res.Issues {
		if issue.FilePath == "blog/2024-03-01-part-3.md" {
			msgs = append(msgs, issue.Message)
		}
	}
	assert.Contains(t, msgs, `series_prev references unknown document "part-2"`)
	assert.Contains(t, msgs, `body references unknown document "nowhere"`)
}

func TestReferenceRule_Placeholders(t *testing.T) {
	files := map[string]string{
		"blog/2024-03-01-part-3.md": "---\ntitle: Part 3\nlayout: post\nseries_next: TODO\n---\nSee [later](#) and [soon](TODO).\n",
	}
	root := writeTree(t, files)

	res := lint(t, root, &Config{AllowPlaceholders: true})
	var got []string
	for _, issue := range res.Issues {
		if issue.Rule == rulePlaceholder {
			got = append(got, issue.Field+":"+issue.Severity.String()+":"+issue.Message)
		}
	}
	assert.ElementsMatch(t, []string{
		"series_next:WARNING:series_next is a placeholder",
		"body:WARNING:body has 2 placeholder references",
	}, got)

	strict := lint(t, root, &Config{AllowPlaceholders: false})
	for _, issue := range strict.Issues {
		if issue.Rule == rulePlaceholder {
			assert.Equal(t, SeverityError, issue.Severity)
		}
	}
	assert.True(t, strict.HasErrors())
}

func TestReferenceRule_DraftsAreKnown(t *testing.T) {
	files := map[string]string{
		"blog/2024-01-01-a.md":    "---\ntitle: A\nlayout: post\nseries_next: b\n---\nSee [b](ref:posts/b).\n",
		"_drafts/2024-06-01-b.md": "---\ntitle: B\nlayout: post\n---\nWIP\n",
		"about.md":                "---\ntitle: About\nlayout: page\n---\nRead [a](ref:a) and [about](ref:pages/about).\n",
	}
	res := lint(t, writeTree(t, files), &Config{Quiet: true, AllowPlaceholders: true})
	assert.Empty(t, res.Issues)
}

func TestFixer_DryRunWritesNothing(t *testing.T) {
	root := writeTree(t, validSite())
	p := filepath.Join(root, "index.md")
	before, err := os.ReadFile(p)
	require.NoError(t, err)

	res, err := (&Fixer{DryRun: true}).FixPath(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, res.FilesModified, 3)

	after, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFormatters(t *testing.T) {
	res := &Result{
		FilesTotal: 2,
		Issues: []Issue{
			{FilePath: "a.md", Severity: SeverityError, Rule: ruleRequiredFields, Field: "title", Message: "title is required", Fix: "Add title"},
			{FilePath: "b.md", Severity: SeverityWarning, Rule: rulePlaceholder, Field: "series_next", Message: "series_next is a placeholder"},
		},
	}

	var text bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&text, res, "content"))
	out := text.String()
	assert.Contains(t, out, "Linting content in: content")
	assert.Contains(t, out, strings.Repeat("━", 60))
	assert.Contains(t, out, "✗ a.md\n  ERROR [required-fields] title: title is required\n  Fix: Add title\n")
	assert.Contains(t, out, "1 error (blocks build)")
	assert.Contains(t, out, "1 warning (should fix)")

	var js bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&js, res, "content"))
	var decoded JSONOutput
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.ErrorCount)
	assert.Equal(t, 1, decoded.WarningCount)
	require.Len(t, decoded.Issues, 2)
	assert.Equal(t, "ERROR", decoded.Issues[0].Severity)
	assert.Equal(t, "title", decoded.Issues[0].Field)

	var clean bytes.Buffer
	require.NoError(t, NewTextFormatter().Format(&clean, &Result{FilesTotal: 1}, "content"))
	assert.Contains(t, clean.String(), "All content passes linting")
}

func TestResult_ExitCode(t *testing.T) {
	assert.Equal(t, 0, (&Result{Issues: []Issue{{Severity: SeverityInfo}}}).ExitCode())
	assert.Equal(t, 1, (&Result{Issues: []Issue{{Severity: SeverityWarning}}}).ExitCode())
	assert.Equal(t, 2, (&Result{Issues: []Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}}).ExitCode())
}
