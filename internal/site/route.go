package site

import (
	"strconv"
	"strings"
)

// RouteKind classifies what a route renders.
type RouteKind int

const (
	RouteDocument RouteKind = iota
	RouteBlogIndex
	RouteTag
	RouteTagIndex
	RouteNotFound
)

func (k RouteKind) String() string {
	switch k {
	case RouteBlogIndex:
		return "blog"
	case RouteTag:
		return "tag"
	case RouteTagIndex:
		return "tags"
	case RouteNotFound:
		return "404"
	default:
		return "document"
	}
}

// NotFoundPath is the route of the generated error page.
const NotFoundPath = "/404.html"

// Route is one output page of the site.
type Route struct {
	Path   string // URL path, e.g. /blog/enums/
	Kind   RouteKind
	Layout string
	Entry  *Entry // document routes only

	// Listing routes
	Title      string
	Posts      []*Entry
	Page       int // 1-based page of a paginated listing
	TotalPages int
	Tag        *Tag
}

// File returns the output file for the route, slash separated and relative
// to the output root.
func (r *Route) File() string {
	return FileForPath(r.Path)
}

// Source names what produced the route: the document path, or a label for
// generated listings.
func (r *Route) Source() string {
	if r.Entry != nil {
		return r.Entry.Doc.SourcePath
	}
	return "(generated " + r.Kind.String() + ")"
}

// FileForPath maps a URL path to its output file: directories get index.html.
func FileForPath(p string) string {
	rel := strings.TrimPrefix(p, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		return rel + "index.html"
	}
	return rel
}

// pagePath returns the URL of page n of a listing rooted at base.
func pagePath(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "page/" + strconv.Itoa(n) + "/"
}
