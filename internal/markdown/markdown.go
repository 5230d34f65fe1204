// Package markdown converts document bodies to HTML. On top of GitHub
// flavoured Markdown it expands table-of-contents markers, resolves
// inter-document links and renders placeholder links as inert text.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Options controls conversion for a whole site.
type Options struct {
	TOCMinLevel       int
	TOCMaxLevel       int
	AllowPlaceholders bool
	SummaryLength     int // in runes; 0 uses DefaultSummaryLength
}

// DefaultSummaryLength bounds summaries derived from the first paragraph.
const DefaultSummaryLength = 280

// Resolver maps a document slug to its site URL. A resolver that knows the
// slug but has no URL for it (an unpublished draft) returns "", true and the
// link renders as a placeholder.
type Resolver interface {
	ResolveSlug(slug string) (url string, ok bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(slug string) (string, bool)

// ResolveSlug implements Resolver.
func (f ResolverFunc) ResolveSlug(slug string) (string, bool) { return f(slug) }

// Heading is one heading of a document with its generated anchor.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Result is the converted form of one document body.
type Result struct {
	HTML         []byte
	Headings     []Heading
	TOC          []*TOCItem // nested outline within the configured levels
	HasTOCMarker bool
	Summary      string
	WordCount    int
	Links        []string // slugs of resolved inter-document links
	Placeholders int
}

// ReadingMinutes estimates reading time at 200 words per minute, minimum one.
func (r *Result) ReadingMinutes() int {
	m := (r.WordCount + 199) / 200
	if m < 1 {
		return 1
	}
	return m
}

// Converter renders Markdown bodies. It is safe for concurrent use.
type Converter struct {
	md   goldmark.Markdown
	opts Options
}

// New creates a Converter.
func New(opts Options) *Converter {
	if opts.TOCMinLevel <= 0 {
		opts.TOCMinLevel = 1
	}
	if opts.TOCMaxLevel <= 0 || opts.TOCMaxLevel > 6 {
		opts.TOCMaxLevel = 6
	}
	if opts.SummaryLength <= 0 {
		opts.SummaryLength = DefaultSummaryLength
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			&siteExtension{opts: opts},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	return &Converter{md: md, opts: opts}
}

// Convert renders body, which belongs to the document at path. Links to
// unknown documents fail with a broken reference error naming path.
func (c *Converter) Convert(path string, body []byte, r Resolver) (*Result, error) {
	if r == nil {
		r = ResolverFunc(func(string) (string, bool) { return "", false })
	}
	state := &docState{path: path, resolver: r, result: &Result{}}
	pc := parser.NewContext()
	pc.Set(stateKey, state)

	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return nil, errors.WrapError(err, errors.CategoryBuild, "markdown conversion failed").
			WithPath(path).Fatal().Build()
	}
	if state.err != nil {
		return nil, state.err
	}

	state.result.HTML = buf.Bytes()
	return state.result, nil
}

// docState carries per-document inputs and outputs through the parser context.
type docState struct {
	path     string
	resolver Resolver
	result   *Result
	err      error
}

func (s *docState) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

var stateKey = parser.NewContextKey()

func stateFrom(pc parser.Context) *docState {
	if s, ok := pc.Get(stateKey).(*docState); ok {
		return s
	}
	return &docState{result: &Result{}, resolver: ResolverFunc(func(string) (string, bool) { return "", false })}
}
