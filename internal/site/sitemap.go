package site

import (
	"encoding/xml"
	"strings"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap renders sitemap.xml for every indexable route. Locations are
// absolute when a base URL is configured.
func (s *Site) Sitemap(baseURL string) ([]byte, error) {
	set := sitemapURLSet{XMLNS: sitemapNamespace}
	base := strings.TrimRight(baseURL, "/")
	for _, r := range s.Routes {
		if r.Kind == RouteNotFound {
			continue
		}
		u := sitemapURL{Loc: base + r.Path}
		if t := lastModified(r); !t.IsZero() {
			u.LastMod = t.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
