package markdown

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// RefScheme prefixes an inter-document link destination: [Part 2](ref:part-2).
const RefScheme = "ref:"

// documentTransformer rewrites links, expands the TOC marker and collects
// headings, summary and word count for one document.
type documentTransformer struct {
	opts Options
}

func (t *documentTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	state := stateFrom(pc)
	source := reader.Source()

	t.rewriteLinks(doc, state)
	if state.err != nil {
		return
	}
	t.collectHeadings(doc, source, state)
	t.expandTOC(doc, source, state)
	t.collectText(doc, source, state)
}

func (t *documentTransformer) rewriteLinks(doc *ast.Document, state *docState) {
	var links []*ast.Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if l, ok := n.(*ast.Link); ok && entering {
			links = append(links, l)
		}
		return ast.WalkContinue, nil
	})

	for _, link := range links {
		dest := string(link.Destination)
		switch {
		case content.IsPlaceholder(dest):
			if !t.opts.AllowPlaceholders {
				state.fail(errors.BrokenReference(state.path, "body", placeholderName(dest)))
				return
			}
			replaceWithPlaceholder(link, dest)
			state.result.Placeholders++
		default:
			slug, fragment, ok := internalTarget(dest)
			if !ok {
				continue
			}
			target, found := state.resolver.ResolveSlug(slug)
			if !found {
				state.fail(errors.BrokenReference(state.path, "body", slug))
				return
			}
			if target == "" {
				// known document that is not published in this build
				replaceWithPlaceholder(link, dest)
				state.result.Placeholders++
				continue
			}
			link.Destination = []byte(target + fragment)
			state.result.Links = append(state.result.Links, slug)
		}
	}
}

func placeholderName(dest string) string {
	if strings.TrimSpace(dest) == "" {
		return "(empty link)"
	}
	return dest
}

// internalTarget recognises ref:<slug>[#frag] and relative links to Markdown
// files, returning the slug they point at.
func internalTarget(dest string) (slug, fragment string, ok bool) {
	if i := strings.IndexByte(dest, '#'); i >= 0 {
		dest, fragment = dest[:i], dest[i:]
	}
	if rest, found := strings.CutPrefix(dest, RefScheme); found {
		rest = strings.Trim(strings.TrimSpace(rest), "/")
		return rest, fragment, rest != ""
	}

	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(dest, "/") {
		return "", "", false
	}
	if !content.IsMarkdown(u.Path) {
		return "", "", false
	}
	slug, _ = slugOfPath(u.Path)
	return slug, fragment, slug != ""
}

func slugOfPath(p string) (string, bool) {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if strings.EqualFold(stem, "index") {
		stem = path.Base(path.Dir(p))
	}
	if len(stem) > 11 && stem[4] == '-' && stem[7] == '-' && stem[10] == '-' {
		stem = stem[11:]
	}
	s := content.Slugify(stem)
	return s, s != ""
}

func replaceWithPlaceholder(link *ast.Link, dest string) {
	ph := &PlaceholderLink{Destination: dest}
	for c := link.FirstChild(); c != nil; {
		next := c.NextSibling()
		ph.AppendChild(ph, c)
		c = next
	}
	parent := link.Parent()
	parent.ReplaceChild(parent, link, ph)
}

func (t *documentTransformer) collectHeadings(doc *ast.Document, source []byte, state *docState) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		var id string
		if v, found := h.AttributeString("id"); found {
			if b, isBytes := v.([]byte); isBytes {
				id = string(b)
			}
		}
		state.result.Headings = append(state.result.Headings, Heading{
			Level: h.Level,
			Text:  plainText(h, source),
			ID:    id,
		})
		return ast.WalkSkipChildren, nil
	})
	state.result.TOC = BuildTOC(state.result.Headings, t.opts.TOCMinLevel, t.opts.TOCMaxLevel)
}

// expandTOC replaces the first TOC marker with the outline and drops any
// further markers.
func (t *documentTransformer) expandTOC(doc *ast.Document, source []byte, state *docState) {
	var markers []ast.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if isTOCMarker(n, source) {
			markers = append(markers, n)
		}
	}
	for i, m := range markers {
		parent := m.Parent()
		if i == 0 {
			parent.ReplaceChild(parent, m, &TOCNode{Items: state.result.TOC})
			state.result.HasTOCMarker = true
			continue
		}
		parent.RemoveChild(parent, m)
	}
}

var (
	tocParagraphMarkers = map[string]struct{}{
		"[[toc]]": {},
		"[toc]":   {},
		"{:toc}":  {},
	}
	tocCommentRe = regexp.MustCompile(`(?i)^<!--\s*toc\s*-->$`)
)

// isTOCMarker matches a top-level block that consists only of a marker:
// a paragraph such as [[toc]], an HTML comment block, or the kramdown form
// of a one item list followed by {:toc}.
func isTOCMarker(n ast.Node, source []byte) bool {
	switch node := n.(type) {
	case *ast.Paragraph:
		lines := lineTexts(node, source)
		if len(lines) != 1 {
			return false
		}
		_, ok := tocParagraphMarkers[strings.ToLower(lines[0])]
		return ok
	case *ast.HTMLBlock:
		text := strings.Join(lineTexts(node, source), "")
		if tocCommentRe.MatchString(text) {
			return true
		}
		if node.HasClosure() {
			text += strings.TrimSpace(string(node.ClosureLine.Value(source)))
			return tocCommentRe.MatchString(text)
		}
		return false
	case *ast.List:
		if node.ChildCount() != 1 || node.FirstChild().ChildCount() != 1 {
			return false
		}
		lines := lineTexts(node.FirstChild().FirstChild(), source)
		return len(lines) == 2 && strings.EqualFold(lines[1], "{:toc}")
	}
	return false
}

// lineTexts returns the trimmed, non-empty source lines of a block.
func lineTexts(n ast.Node, source []byte) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if s := strings.TrimSpace(string(seg.Value(source))); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (t *documentTransformer) collectText(doc *ast.Document, source []byte, state *docState) {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*ast.Paragraph); ok {
			if s := strings.TrimSpace(plainText(n, source)); s != "" {
				state.result.Summary = truncateWords(s, t.opts.SummaryLength)
				break
			}
		}
	}
	state.result.WordCount = countWords(doc, source)
}
