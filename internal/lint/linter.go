// Package lint checks a content tree without building it.
package lint

import (
	"context"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Linter performs linting operations on content files.
type Linter struct {
	cfg       *Config
	rules     []Rule
	siteRules []SiteRule
}

// NewLinter creates a new linter with the given configuration.
func NewLinter(cfg *Config) *Linter {
	if cfg == nil {
		cfg = &Config{Format: "text", AllowPlaceholders: true}
	}

	return &Linter{
		cfg: cfg,
		rules: []Rule{
			FrontmatterRule{},
			MetadataRule{},
			FingerprintRule{},
			UIDRule{},
		},
		siteRules: []SiteRule{
			DuplicateSlugRule{},
			NewReferenceRule(cfg.AllowPlaceholders),
		},
	}
}

// LintPath lints every Markdown document below root.
func (l *Linter) LintPath(ctx context.Context, root string) (*Result, error) {
	rels, err := content.Discover(root)
	if err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(rels))
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapError(err, errors.CategoryRuntime, "lint canceled").Build()
		}
		f, err := loadFile(root, rel)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return l.LintFiles(files), nil
}

// LintFiles applies every rule to already loaded files.
func (l *Linter) LintFiles(files []*File) *Result {
	result := &Result{Issues: []Issue{}, FilesTotal: len(files)}
	for _, f := range files {
		for _, rule := range l.rules {
			l.add(result, rule.Check(f))
		}
	}
	for _, rule := range l.siteRules {
		l.add(result, rule.CheckSite(files))
	}
	sortIssues(result.Issues)
	return result
}

func (l *Linter) add(result *Result, issues []Issue) {
	for _, issue := range issues {
		// Skip info and warnings in quiet mode
		if l.cfg.Quiet && issue.Severity != SeverityError {
			continue
		}
		result.Issues = append(result.Issues, issue)
	}
}
