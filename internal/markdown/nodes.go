package markdown

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// KindTOC is the node kind of an expanded table of contents.
var KindTOC = ast.NewNodeKind("TOC")

// TOCNode replaces a table-of-contents marker in the document tree.
type TOCNode struct {
	ast.BaseBlock
	Items []*TOCItem
}

// Kind implements ast.Node.
func (n *TOCNode) Kind() ast.NodeKind { return KindTOC }

// Dump implements ast.Node.
func (n *TOCNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Items": strconv.Itoa(len(n.Items))}, nil)
}

// KindPlaceholderLink is the node kind of a link whose target is not yet written.
var KindPlaceholderLink = ast.NewNodeKind("PlaceholderLink")

// PlaceholderLink keeps a link's text but renders it inert.
type PlaceholderLink struct {
	ast.BaseInline
	Destination string
}

// Kind implements ast.Node.
func (n *PlaceholderLink) Kind() ast.NodeKind { return KindPlaceholderLink }

// Dump implements ast.Node.
func (n *PlaceholderLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Destination": n.Destination}, nil)
}

type siteExtension struct {
	opts Options
}

func (e *siteExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&documentTransformer{opts: e.opts}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&nodeRenderer{}, 100),
	))
}

type nodeRenderer struct{}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTOC, r.renderTOC)
	reg.Register(KindPlaceholderLink, r.renderPlaceholder)
}

func (r *nodeRenderer) renderTOC(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*TOCNode)
	if len(n.Items) > 0 {
		_, _ = w.Write(RenderTOC(n.Items))
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderPlaceholder(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<span class="link-placeholder" aria-disabled="true" title="Not yet published">`)
	} else {
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkContinue, nil
}
