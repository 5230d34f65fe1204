package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text/title
	Tag        string // HTML tag (a, img, script, link, etc.)
	Attribute  string // Attribute containing the link (href, src, etc.)
	IsInternal bool   // True if link is internal to the site
	Line       int    // Approximate element index in the document
}

// Page is the link-relevant content of one HTML file.
type Page struct {
	Links []*Link
	IDs   map[string]struct{}
}

// ExtractPage parses an HTML document and collects its links and element ids.
func ExtractPage(r io.Reader, baseURL string) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid base URL").
			WithContext("base_url", baseURL).
			Build()
	}

	page := &Page{IDs: make(map[string]struct{})}
	var lineNum int

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			lineNum++
			if id := getAttr(n, "id"); id != "" {
				page.IDs[id] = struct{}{}
			}
			if link := elementLink(n, base, lineNum); link != nil {
				page.Links = append(page.Links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(doc)
	return page, nil
}

// elementLink extracts the link carried by a single HTML element, if any.
func elementLink(n *html.Node, base *url.URL, lineNum int) *Link {
	var attr, text string
	switch n.Data {
	case "a":
		attr, text = "href", extractText(n)
	case "link":
		attr, text = "href", getAttr(n, "rel")
	case "img":
		attr, text = "src", getAttr(n, "alt")
	case "script", "video", "audio", "source", "iframe":
		attr = "src"
	default:
		return nil
	}
	val := getAttr(n, attr)
	if val == "" {
		return nil
	}
	return &Link{
		URL:        val,
		Text:       text,
		Tag:        n.Data,
		Attribute:  attr,
		IsInternal: isInternalLink(val, base),
		Line:       lineNum,
	}
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}

// isInternalLink determines if a URL points into the site.
func isInternalLink(linkURL string, baseURL *url.URL) bool {
	if strings.HasPrefix(linkURL, "#") {
		return true
	}

	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return true
	}
	return baseURL != nil && baseURL.Host != "" && strings.EqualFold(u.Host, baseURL.Host)
}

// ShouldVerifyLink determines if a link should be verified.
func ShouldVerifyLink(link *Link) bool {
	if link.URL == "" || !link.IsInternal {
		return false
	}
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(link.URL, prefix) {
			return false
		}
	}
	return true
}
