// Package content loads Markdown documents with YAML front matter into
// validated collections of pages and posts.
package content

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/normalization"
)

// Layout selects the template a document renders with.
type Layout string

const (
	LayoutPage Layout = "page"
	LayoutPost Layout = "post"
	LayoutHome Layout = "home"
)

var layoutNormalizer = normalization.NewNormalizer("layout", map[string]Layout{
	"page": LayoutPage,
	"post": LayoutPost,
	"home": LayoutHome,
}, "")

// ParseLayout maps a front matter value onto a known layout.
func ParseLayout(raw string) (Layout, error) {
	return layoutNormalizer.Parse(raw)
}

// Layouts lists the recognised layout names.
func Layouts() []string { return layoutNormalizer.ValidKeys() }

// Kind names a collection.
type Kind string

const (
	KindPosts Kind = "posts"
	KindPages Kind = "pages"
)

// Kind returns the collection a layout belongs to. Home documents live with
// the pages.
func (l Layout) Kind() Kind {
	if l == LayoutPost {
		return KindPosts
	}
	return KindPages
}

// Status is the publication state of a document.
type Status int

const (
	StatusPublished Status = iota
	StatusDraft
	StatusScheduled // dated in the future
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusScheduled:
		return "scheduled"
	default:
		return "published"
	}
}

// Reference is a front matter relation to another document by slug.
type Reference struct {
	Target string // slug as written, trimmed
	Set    bool   // key present in front matter
}

// IsPlaceholder reports whether the reference is explicitly unassigned.
func (r Reference) IsPlaceholder() bool {
	return r.Set && IsPlaceholder(r.Target)
}

// IsPlaceholder reports whether a link target marks a not-yet-written
// document: empty, "#", or TODO in any case (optionally prefixed with "#").
func IsPlaceholder(target string) bool {
	t := strings.TrimSpace(target)
	t = strings.TrimPrefix(t, "#")
	return t == "" || strings.EqualFold(t, "todo")
}

// Metadata is the typed front matter of a document.
type Metadata struct {
	Title       string
	Layout      Layout
	Tags        []string
	Date        *time.Time
	Updated     *time.Time
	Draft       bool
	Revision    int
	HasRevision bool
	SeriesNext  Reference
	SeriesPrev  Reference
	Summary     string
	Permalink   string
	Weight      int
	UID         string
	Fingerprint string
	Extra       map[string]any
}

// Document is one source file of the site.
type Document struct {
	Slug       string
	SourcePath string // slash separated, relative to the content root
	AbsPath    string
	Metadata   Metadata
	Body       []byte
	Fields     map[string]any // raw front matter
	Status     Status
}

// Kind returns the collection the document belongs to.
func (d *Document) Kind() Kind { return d.Metadata.Layout.Kind() }

// Published reports whether the document appears in the built site.
func (d *Document) Published() bool { return d.Status == StatusPublished }

// PublishDate returns the document date or the zero time.
func (d *Document) PublishDate() time.Time {
	if d.Metadata.Date == nil {
		return time.Time{}
	}
	return *d.Metadata.Date
}

// LastModified returns the updated date, falling back to the publish date.
func (d *Document) LastModified() time.Time {
	if d.Metadata.Updated != nil {
		return *d.Metadata.Updated
	}
	return d.PublishDate()
}
