package markdown

import (
	"bytes"
	"html"
)

// TOCItem is one entry of a table of contents with its nested entries.
type TOCItem struct {
	Heading
	Children []*TOCItem
}

// BuildTOC nests headings by level, keeping document order. A heading is a
// child of the closest preceding heading with a lower level; skipped levels
// are not filled in.
func BuildTOC(headings []Heading, minLevel, maxLevel int) []*TOCItem {
	var roots []*TOCItem
	var stack []*TOCItem
	for _, h := range headings {
		if h.Level < minLevel || h.Level > maxLevel {
			continue
		}
		item := &TOCItem{Heading: h}
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, item)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, item)
		}
		stack = append(stack, item)
	}
	return roots
}

// RenderTOC renders items as a navigation element of nested lists.
func RenderTOC(items []*TOCItem) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<nav class="toc" aria-label="Table of contents">`)
	buf.WriteByte('\n')
	writeTOCList(&buf, items)
	buf.WriteString("</nav>")
	return buf.Bytes()
}

func writeTOCList(buf *bytes.Buffer, items []*TOCItem) {
	buf.WriteString("<ul>\n")
	for _, it := range items {
		buf.WriteString(`<li><a href="#`)
		buf.WriteString(html.EscapeString(it.ID))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(it.Text))
		buf.WriteString("</a>")
		if len(it.Children) > 0 {
			buf.WriteByte('\n')
			writeTOCList(buf, it.Children)
		}
		buf.WriteString("</li>\n")
	}
	buf.WriteString("</ul>\n")
}
