// Package site assembles loaded documents into routed collections and builds
// the published output tree.
package site

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/render"
)

const (
	fieldSeriesNext = "series_next"
	fieldSeriesPrev = "series_prev"
	fieldPermalink  = "permalink"

	tagsRoute = "/tags/"
)

// Options controls how documents are mapped to routes.
type Options struct {
	BlogRoute         string
	PageSize          int // posts per blog index page; 0 puts every post on one page
	Tags              bool
	AllowPlaceholders bool
}

// OptionsFromConfig extracts assembly options from a configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BlogRoute:         cfg.Blog.Route,
		PageSize:          cfg.Blog.PageSize,
		Tags:              cfg.Taxonomy.Tags,
		AllowPlaceholders: cfg.References.AllowPlaceholders,
	}
}

// RefState is the resolution state of a front matter cross-reference.
type RefState int

const (
	RefNone RefState = iota
	RefResolved
	RefPlaceholder
)

// Ref is a resolved series reference.
type Ref struct {
	State  RefState
	Target *Entry // set when State is RefResolved
	Raw    string
}

// Entry is a published document with its route and neighbours.
type Entry struct {
	Doc   *content.Document
	Route string

	// Posts only. Next is the following post in listing order (older),
	// Prev the preceding one (newer).
	Prev *Entry
	Next *Entry

	SeriesPrev Ref
	SeriesNext Ref
}

// Tag groups the published posts carrying one tag.
type Tag struct {
	Name  string
	Slug  string
	Route string
	Posts []*Entry
}

// Site is the assembled, routed form of a content store.
type Site struct {
	Options Options
	Home    *Entry
	Posts   []*Entry // date descending
	Pages   []*Entry // by slug, home excluded
	Tags    []*Tag   // by slug
	Routes  []*Route // by path

	entries map[content.Kind]map[string]*Entry
	known   map[content.Kind]map[string]bool
	byPath  map[string]*Route
}

// Assemble links the published documents of store into collections and maps
// each to a unique route. It fails on the first route collision or broken
// series reference.
func Assemble(store *content.Store, opts Options) (*Site, error) {
	opts.BlogRoute = config.NormalizeRoute(opts.BlogRoute)
	s := &Site{
		Options: opts,
		entries: map[content.Kind]map[string]*Entry{content.KindPosts: {}, content.KindPages: {}},
		known:   map[content.Kind]map[string]bool{content.KindPosts: {}, content.KindPages: {}},
		byPath:  make(map[string]*Route),
	}
	for _, d := range store.All() {
		s.known[d.Kind()][d.Slug] = true
	}

	if err := s.addPages(store.Pages().Published()); err != nil {
		return nil, err
	}
	if err := s.addPosts(store.Posts().Published()); err != nil {
		return nil, err
	}
	if err := s.addBlogIndex(); err != nil {
		return nil, err
	}
	if opts.Tags {
		if err := s.addTags(); err != nil {
			return nil, err
		}
	}
	if err := s.claim(&Route{Path: NotFoundPath, Kind: RouteNotFound, Layout: render.LayoutNotFound, Title: "Page not found"}); err != nil {
		return nil, err
	}
	if err := s.resolveSeries(); err != nil {
		return nil, err
	}

	sort.Slice(s.Routes, func(i, j int) bool { return s.Routes[i].Path < s.Routes[j].Path })
	return s, nil
}

func (s *Site) claim(r *Route) error {
	if prev, ok := s.byPath[r.Path]; ok {
		return errors.RouteCollision(r.Source(), prev.Source(), r.Path)
	}
	s.byPath[r.Path] = r
	s.Routes = append(s.Routes, r)
	return nil
}

func (s *Site) addEntry(doc *content.Document, path string) (*Entry, error) {
	e := &Entry{Doc: doc, Route: path}
	if err := s.claim(&Route{Path: path, Kind: RouteDocument, Layout: string(doc.Metadata.Layout), Entry: e}); err != nil {
		return nil, err
	}
	s.entries[doc.Kind()][doc.Slug] = e
	return e, nil
}

func (s *Site) addPages(pages []*content.Document) error {
	for _, doc := range pages {
		if doc.Metadata.Layout == content.LayoutHome {
			if s.Home != nil {
				return errors.RouteCollision(doc.SourcePath, s.Home.Doc.SourcePath, "/")
			}
			e, err := s.addEntry(doc, "/")
			if err != nil {
				return err
			}
			s.Home = e
			continue
		}

		path := "/" + doc.Slug + "/"
		if doc.Metadata.Permalink != "" {
			path = config.NormalizeRoute(doc.Metadata.Permalink)
			if path == "/" {
				return errors.InvalidField(doc.SourcePath, fieldPermalink, "only a home document may use /")
			}
		}
		e, err := s.addEntry(doc, path)
		if err != nil {
			return err
		}
		s.Pages = append(s.Pages, e)
	}
	return nil
}

func (s *Site) addPosts(posts []*content.Document) error {
	for _, doc := range posts {
		e, err := s.addEntry(doc, s.Options.BlogRoute+doc.Slug+"/")
		if err != nil {
			return err
		}
		if n := len(s.Posts); n > 0 {
			prev := s.Posts[n-1]
			prev.Next = e
			e.Prev = prev
		}
		s.Posts = append(s.Posts, e)
	}
	return nil
}

func (s *Site) addBlogIndex() error {
	for i, chunk := range paginate(s.Posts, s.Options.PageSize) {
		r := &Route{
			Path:       pagePath(s.Options.BlogRoute, i+1),
			Kind:       RouteBlogIndex,
			Layout:     render.LayoutBlogIndex,
			Title:      "Blog",
			Posts:      chunk.posts,
			Page:       i + 1,
			TotalPages: chunk.total,
		}
		if err := s.claim(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Site) addTags() error {
	bySlug := make(map[string]*Tag)
	for _, post := range s.Posts {
		for _, name := range post.Doc.Metadata.Tags {
			slug := content.Slugify(name)
			if slug == "" {
				continue
			}
			tag, ok := bySlug[slug]
			if !ok {
				tag = &Tag{Name: name, Slug: slug, Route: tagsRoute + slug + "/"}
				bySlug[slug] = tag
				s.Tags = append(s.Tags, tag)
			}
			tag.Posts = append(tag.Posts, post)
		}
	}
	sort.Slice(s.Tags, func(i, j int) bool { return s.Tags[i].Slug < s.Tags[j].Slug })

	if err := s.claim(&Route{Path: tagsRoute, Kind: RouteTagIndex, Layout: render.LayoutTags, Title: "Tags"}); err != nil {
		return err
	}
	for _, tag := range s.Tags {
		r := &Route{
			Path:       tag.Route,
			Kind:       RouteTag,
			Layout:     render.LayoutTag,
			Title:      "Tagged " + tag.Name,
			Posts:      tag.Posts,
			Page:       1,
			TotalPages: 1,
			Tag:        tag,
		}
		if err := s.claim(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Site) resolveSeries() error {
	all := make([]*Entry, 0, len(s.Posts)+len(s.Pages)+1)
	all = append(all, s.Posts...)
	all = append(all, s.Pages...)
	if s.Home != nil {
		all = append(all, s.Home)
	}
	for _, e := range all {
		var err error
		if e.SeriesNext, err = s.resolveRef(e, fieldSeriesNext, e.Doc.Metadata.SeriesNext); err != nil {
			return err
		}
		if e.SeriesPrev, err = s.resolveRef(e, fieldSeriesPrev, e.Doc.Metadata.SeriesPrev); err != nil {
			return err
		}
	}
	return nil
}

// resolveRef looks a series reference up in the referencing document's own
// collection. Targets that exist but are not published resolve to placeholders.
func (s *Site) resolveRef(e *Entry, field string, ref content.Reference) (Ref, error) {
	if !ref.Set {
		return Ref{}, nil
	}
	if ref.IsPlaceholder() {
		if !s.Options.AllowPlaceholders {
			return Ref{}, errors.BrokenReference(e.Doc.SourcePath, field, placeholderLabel(ref.Target))
		}
		return Ref{State: RefPlaceholder, Raw: ref.Target}, nil
	}

	kind := e.Doc.Kind()
	for _, slug := range candidateSlugs(ref.Target) {
		if target, ok := s.entries[kind][slug]; ok {
			return Ref{State: RefResolved, Target: target, Raw: ref.Target}, nil
		}
		if s.known[kind][slug] {
			return Ref{State: RefPlaceholder, Raw: ref.Target}, nil
		}
	}
	return Ref{}, errors.BrokenReference(e.Doc.SourcePath, field, ref.Target)
}

func placeholderLabel(target string) string {
	if strings.TrimSpace(target) == "" {
		return "(empty)"
	}
	return target
}

func candidateSlugs(target string) []string {
	target = strings.Trim(strings.TrimSpace(target), "/")
	slug := content.Slugify(target)
	if slug == target || slug == "" {
		return []string{target}
	}
	return []string{target, slug}
}

// Lookup returns the route at a URL path.
func (s *Site) Lookup(path string) (*Route, bool) {
	r, ok := s.byPath[path]
	return r, ok
}

// Entry returns the published entry of a collection by slug.
func (s *Site) Entry(kind content.Kind, slug string) (*Entry, bool) {
	e, ok := s.entries[kind][slug]
	return e, ok
}

// Entries returns every published document entry in route order.
func (s *Site) Entries() []*Entry {
	var out []*Entry
	for _, r := range s.Routes {
		if r.Entry != nil {
			out = append(out, r.Entry)
		}
	}
	return out
}

type pageChunk struct {
	posts []*Entry
	total int
}

// paginate splits posts into pages of size. There is always at least one page.
func paginate(posts []*Entry, size int) []pageChunk {
	if size <= 0 || len(posts) <= size {
		return []pageChunk{{posts: posts, total: 1}}
	}
	total := (len(posts) + size - 1) / size
	chunks := make([]pageChunk, 0, total)
	for i := 0; i < len(posts); i += size {
		end := i + size
		if end > len(posts) {
			end = len(posts)
		}
		chunks = append(chunks, pageChunk{posts: posts[i:end], total: total})
	}
	return chunks
}

// seriesPlaceholders counts the tolerated placeholder series references of e.
func (e *Entry) seriesPlaceholders() int {
	n := 0
	for _, r := range []Ref{e.SeriesPrev, e.SeriesNext} {
		if r.State == RefPlaceholder {
			n++
		}
	}
	return n
}
