package lint

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
)

// DuplicateSlugRule reports documents of one collection that share a slug
// and are not distinguishable revisions.
type DuplicateSlugRule struct{}

func (DuplicateSlugRule) Name() string { return ruleDuplicateSlug }

func (r DuplicateSlugRule) CheckSite(files []*File) []Issue {
	type key struct {
		kind content.Kind
		slug string
	}
	groups := map[key][]*File{}
	var order []key
	for _, f := range files {
		if !f.Valid() {
			continue
		}
		k := key{f.Doc.Kind(), f.Doc.Slug}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], f)
	}

	var issues []Issue
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		docs := make([]*content.Document, 0, len(group))
		for _, f := range group {
			docs = append(docs, f.Doc)
		}
		if _, err := content.Deduplicate(docs); err == nil {
			continue
		}
		for i, f := range group {
			other := group[(i+1)%len(group)]
			issues = append(issues, Issue{
				FilePath:    f.Rel,
				Severity:    SeverityError,
				Rule:        r.Name(),
				Field:       "slug",
				Message:     fmt.Sprintf("slug %q is also used by %s", k.slug, other.Rel),
				Explanation: "Slugs must be unique within posts and within pages.\nRevisions of one document must all declare distinct revision numbers.",
				Fix:         "Rename one file, set slug, or add revision to every variant",
			})
		}
	}
	return issues
}

// ReferenceRule checks series_prev/series_next and ref: links in bodies
// against every document in the tree, drafts included.
type ReferenceRule struct {
	AllowPlaceholders bool
	converter         *markdown.Converter
}

// NewReferenceRule creates the rule.
func NewReferenceRule(allowPlaceholders bool) *ReferenceRule {
	return &ReferenceRule{
		AllowPlaceholders: allowPlaceholders,
		converter:         markdown.New(markdown.Options{AllowPlaceholders: true}),
	}
}

func (r *ReferenceRule) Name() string { return ruleBrokenRef }

func (r *ReferenceRule) CheckSite(files []*File) []Issue {
	idx := slugIndex{}
	for _, f := range files {
		if f.Valid() {
			idx.add(f.Doc)
		}
	}

	var issues []Issue
	for _, f := range files {
		if !f.Valid() {
			continue
		}
		issues = append(issues, r.checkSeries(f, idx)...)
		issues = append(issues, r.checkBody(f, idx)...)
	}
	return issues
}

func (r *ReferenceRule) checkSeries(f *File, idx slugIndex) []Issue {
	var issues []Issue
	for _, ref := range []struct {
		field string
		ref   content.Reference
	}{
		{"series_prev", f.Doc.Metadata.SeriesPrev},
		{"series_next", f.Doc.Metadata.SeriesNext},
	} {
		switch {
		case !ref.ref.Set:
		case ref.ref.IsPlaceholder():
			issues = append(issues, r.placeholder(f, ref.field, 1))
		case !idx.has(f.Doc.Kind(), ref.ref.Target):
			issues = append(issues, brokenRef(f, ref.field, ref.ref.Target))
		}
	}
	return issues
}

func (r *ReferenceRule) checkBody(f *File, idx slugIndex) []Issue {
	var missing []string
	resolver := markdown.ResolverFunc(func(ref string) (string, bool) {
		if idx.resolve(f.Doc.Kind(), ref) {
			return "/" + ref + "/", true
		}
		missing = append(missing, ref)
		return "", true
	})
	res, err := r.converter.Convert(f.Rel, f.Doc.Body, resolver)
	if err != nil {
		issue := Issue{FilePath: f.Rel, Severity: SeverityError, Rule: ruleMetadata, Field: "body", Message: err.Error()}
		if ce, ok := errors.AsClassified(err); ok {
			issue.Message = ce.Message()
		}
		return []Issue{issue}
	}

	var issues []Issue
	for _, slug := range missing {
		issues = append(issues, brokenRef(f, "body", slug))
	}
	if n := res.Placeholders - len(missing); n > 0 {
		issues = append(issues, r.placeholder(f, "body", n))
	}
	return issues
}

func (r *ReferenceRule) placeholder(f *File, field string, n int) Issue {
	issue := Issue{
		FilePath:    f.Rel,
		Severity:    SeverityWarning,
		Rule:        rulePlaceholder,
		Field:       field,
		Message:     fmt.Sprintf("%s has %d placeholder reference%s", field, n, pluralize(n)),
		Explanation: "Placeholder targets (#, TODO or empty) render as inert text until the document exists.",
		Fix:         "Point the reference at a document slug once it is written",
	}
	if field != "body" {
		issue.Message = field + " is a placeholder"
	}
	if !r.AllowPlaceholders {
		issue.Severity = SeverityError
		issue.Explanation = "references.allow_placeholders is false, so the build rejects placeholders."
	}
	return issue
}

func brokenRef(f *File, field, target string) Issue {
	return Issue{
		FilePath: f.Rel,
		Severity: SeverityError,
		Rule:     ruleBrokenRef,
		Field:    field,
		Message:  fmt.Sprintf("%s references unknown document %q", field, target),
		Fix:      "Fix the slug or create the document",
	}
}

// slugIndex holds every known slug per collection.
type slugIndex map[content.Kind]map[string]bool

func (s slugIndex) add(doc *content.Document) {
	kind := doc.Kind()
	if s[kind] == nil {
		s[kind] = map[string]bool{}
	}
	s[kind][doc.Slug] = true
}

func (s slugIndex) has(kind content.Kind, ref string) bool {
	ref = strings.Trim(strings.TrimSpace(ref), "/")
	return s[kind][ref] || s[kind][content.Slugify(ref)]
}

// resolve looks in the referencing document's own collection, then the
// other one; a posts/ or pages/ prefix selects the collection.
func (s slugIndex) resolve(own content.Kind, ref string) bool {
	kinds := []content.Kind{content.KindPosts, content.KindPages}
	if own == content.KindPages {
		kinds = []content.Kind{content.KindPages, content.KindPosts}
	}
	if kind, slug, ok := strings.Cut(ref, "/"); ok {
		switch content.Kind(kind) {
		case content.KindPosts, content.KindPages:
			kinds = []content.Kind{content.Kind(kind)}
			ref = slug
		}
	}
	for _, k := range kinds {
		if s.has(k, ref) {
			return true
		}
	}
	return false
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].FilePath != issues[j].FilePath {
			return issues[i].FilePath < issues[j].FilePath
		}
		return issues[i].Severity > issues[j].Severity
	})
}
