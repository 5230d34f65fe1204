package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// Options controls how a content tree is loaded.
type Options struct {
	Dir           string
	DraftsDir     string // directory name marking drafts, e.g. "_drafts"
	IncludeDrafts bool
	IncludeFuture bool
	Now           func() time.Time
	Dates         DateSource // optional source of last-modified dates
}

// DateSource supplies a last-modified time for a file when front matter has none.
type DateSource interface {
	LastModified(absPath string) (time.Time, bool)
}

// Collection is an ordered set of documents with unique slugs.
type Collection struct {
	Kind      Kind
	Documents []*Document
	bySlug    map[string]*Document
}

func newCollection(kind Kind, docs []*Document) *Collection {
	c := &Collection{Kind: kind, Documents: docs, bySlug: make(map[string]*Document, len(docs))}
	for _, d := range docs {
		c.bySlug[d.Slug] = d
	}
	return c
}

// Get looks up a document by slug.
func (c *Collection) Get(slug string) (*Document, bool) {
	d, ok := c.bySlug[slug]
	return d, ok
}

// Len returns the number of documents.
func (c *Collection) Len() int { return len(c.Documents) }

// Published returns the documents that appear in the built site, keeping order.
func (c *Collection) Published() []*Document {
	out := make([]*Document, 0, len(c.Documents))
	for _, d := range c.Documents {
		if d.Published() {
			out = append(out, d)
		}
	}
	return out
}

// Store holds every loaded document, grouped by collection.
type Store struct {
	Root  string
	posts *Collection
	pages *Collection
}

// Posts returns the post collection ordered by publish date, newest first.
func (s *Store) Posts() *Collection { return s.posts }

// Pages returns the page collection ordered by slug.
func (s *Store) Pages() *Collection { return s.pages }

// Collection returns the collection of the given kind.
func (s *Store) Collection(kind Kind) *Collection {
	if kind == KindPosts {
		return s.posts
	}
	return s.pages
}

// All returns every document, posts first.
func (s *Store) All() []*Document {
	out := make([]*Document, 0, s.posts.Len()+s.pages.Len())
	out = append(out, s.posts.Documents...)
	return append(out, s.pages.Documents...)
}

// Drafts returns all documents held back as drafts.
func (s *Store) Drafts() []*Document {
	var out []*Document
	for _, d := range s.All() {
		if d.Status == StatusDraft {
			out = append(out, d)
		}
	}
	return out
}

// Load reads, validates and classifies every Markdown document under opts.Dir.
// The first invalid document aborts the load.
func Load(ctx context.Context, opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "content directory is not readable").
			WithPath(opts.Dir).Build()
	}
	if !info.IsDir() {
		return nil, errors.FileSystemError("content path is not a directory").WithPath(opts.Dir).Build()
	}

	paths, err := Discover(opts.Dir)
	if err != nil {
		return nil, err
	}

	now := opts.Now()
	docs := make([]*Document, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := LoadFile(opts.Dir, rel)
		if err != nil {
			return nil, err
		}
		classify(doc, opts, now)
		docs = append(docs, doc)
	}

	kept, err := Deduplicate(docs)
	if err != nil {
		return nil, err
	}

	var posts, pages []*Document
	for _, d := range kept {
		if d.Kind() == KindPosts {
			posts = append(posts, d)
		} else {
			pages = append(pages, d)
		}
	}
	SortPosts(posts)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })

	slog.Debug("Content loaded",
		logfields.Path(opts.Dir),
		slog.Int("posts", len(posts)),
		slog.Int("pages", len(pages)))

	return &Store{Root: opts.Dir, posts: newCollection(KindPosts, posts), pages: newCollection(KindPages, pages)}, nil
}

// LoadFile reads, parses and validates one document relative to root.
func LoadFile(root, rel string) (*Document, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	raw, err := os.ReadFile(abs) // #nosec G304 -- path discovered under the content root
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").WithPath(rel).Build()
	}
	doc, err := Parse(rel, raw)
	if err != nil {
		return nil, err
	}
	doc.AbsPath = abs
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Discover lists Markdown files below root as sorted slash-separated relative
// paths. Hidden files and directories are skipped.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsMarkdown(name) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk content directory").WithPath(root).Build()
	}
	sort.Strings(out)
	return out, nil
}

// IsMarkdown reports whether a file name has a Markdown extension.
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func classify(doc *Document, opts Options, now time.Time) {
	if doc.Metadata.Updated == nil && opts.Dates != nil {
		if t, ok := opts.Dates.LastModified(doc.AbsPath); ok {
			doc.Metadata.Updated = &t
		}
	}

	draft := doc.Metadata.Draft || inDraftsDir(doc.SourcePath, opts.DraftsDir)
	doc.Metadata.Draft = draft
	switch {
	case draft && !opts.IncludeDrafts:
		doc.Status = StatusDraft
	case !opts.IncludeFuture && doc.Metadata.Date != nil && doc.Metadata.Date.After(now):
		doc.Status = StatusScheduled
	default:
		doc.Status = StatusPublished
	}
}

func inDraftsDir(rel, draftsDir string) bool {
	if draftsDir == "" {
		return false
	}
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if seg == draftsDir {
			return true
		}
	}
	return false
}

// SortPosts orders posts by publish date, newest first. Equal dates fall back
// to slug order and undated posts come last.
func SortPosts(posts []*Document) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Metadata.Date, posts[j].Metadata.Date
		switch {
		case a == nil && b == nil:
			return posts[i].Slug < posts[j].Slug
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return posts[i].Slug < posts[j].Slug
		}
	})
}
