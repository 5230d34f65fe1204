package site

import (
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
)

// ResolverFor returns the link resolver used while converting doc's body.
// Unqualified slugs are looked up in doc's own collection first; "posts/<slug>"
// and "pages/<slug>" pick a collection explicitly.
func (s *Site) ResolverFor(doc *content.Document) markdown.Resolver {
	own := doc.Kind()
	other := content.KindPages
	if own == content.KindPages {
		other = content.KindPosts
	}
	return markdown.ResolverFunc(func(ref string) (string, bool) {
		kinds := []content.Kind{own, other}
		if kind, slug, ok := strings.Cut(ref, "/"); ok {
			switch content.Kind(kind) {
			case content.KindPosts, content.KindPages:
				kinds = []content.Kind{content.Kind(kind)}
				ref = slug
			}
		}
		for _, kind := range kinds {
			for _, slug := range candidateSlugs(ref) {
				if e, ok := s.entries[kind][slug]; ok {
					return e.Route, true
				}
				if s.known[kind][slug] {
					return "", true
				}
			}
		}
		return "", false
	})
}
