package site

import (
	"html/template"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/render"
)

// homeRecentPosts bounds the post list on the home page.
const homeRecentPosts = 5

// viewBuilder turns routes and converted bodies into template view models.
type viewBuilder struct {
	site    *Site
	base    render.SiteView
	nav     []config.NavItem
	results map[*content.Document]*markdown.Result
}

func newViewBuilder(s *Site, cfg *config.Config, results map[*content.Document]*markdown.Result) *viewBuilder {
	nav := append([]config.NavItem(nil), cfg.Nav...)
	sort.SliceStable(nav, func(i, j int) bool { return nav[i].Weight < nav[j].Weight })
	return &viewBuilder{
		site: s,
		base: render.SiteView{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			BaseURL:     cfg.Site.BaseURL,
			Author:      cfg.Site.Author,
			Language:    cfg.Site.Language,
		},
		nav:     nav,
		results: results,
	}
}

func (v *viewBuilder) siteView(path string) render.SiteView {
	sv := v.base
	sv.Nav = make([]render.NavLink, 0, len(v.nav))
	for _, item := range v.nav {
		active := path == item.URL || (item.URL != "/" && strings.HasSuffix(item.URL, "/") && strings.HasPrefix(path, item.URL))
		sv.Nav = append(sv.Nav, render.NavLink{Name: item.Name, URL: item.URL, Active: active})
	}
	return sv
}

func (v *viewBuilder) canonical(path string) string {
	if v.base.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(v.base.BaseURL, "/") + path
}

// view builds the view model for any route.
func (v *viewBuilder) view(r *Route) *render.PageView {
	if r.Entry != nil {
		return v.documentView(r)
	}
	return v.listingView(r)
}

func (v *viewBuilder) documentView(r *Route) *render.PageView {
	e := r.Entry
	md := e.Doc.Metadata
	res := v.results[e.Doc]

	pv := &render.PageView{
		Site:        v.siteView(r.Path),
		Layout:      r.Layout,
		Title:       md.Title,
		Heading:     md.Title,
		Description: v.summary(e),
		URL:         r.Path,
		Canonical:   v.canonical(r.Path),
		Date:        e.Doc.PublishDate(),
		Draft:       md.Draft,
		Tags:        v.tagLinks(md.Tags),
		SeriesPrev:  refView(e.SeriesPrev),
		SeriesNext:  refView(e.SeriesNext),
	}
	if md.Updated != nil && !md.Updated.Equal(pv.Date) {
		pv.Updated = *md.Updated
	}
	if res != nil {
		pv.Content = template.HTML(res.HTML) // #nosec G203 -- produced by the markdown converter
		pv.ReadingMinutes = res.ReadingMinutes()
		// only present when the body has a TOC marker
		if res.HasTOCMarker && len(res.TOC) > 0 {
			pv.TOC = template.HTML(markdown.RenderTOC(res.TOC)) // #nosec G203 -- escaped by RenderTOC
		}
	}
	if e.Prev != nil {
		pv.Prev = &render.LinkView{Title: e.Prev.Doc.Metadata.Title, URL: e.Prev.Route}
	}
	if e.Next != nil {
		pv.Next = &render.LinkView{Title: e.Next.Doc.Metadata.Title, URL: e.Next.Route}
	}
	if md.Layout == content.LayoutHome {
		recent := v.site.Posts
		if len(recent) > homeRecentPosts {
			recent = recent[:homeRecentPosts]
		}
		pv.Posts = v.summaries(recent)
	}
	return pv
}

func (v *viewBuilder) listingView(r *Route) *render.PageView {
	pv := &render.PageView{
		Site:      v.siteView(r.Path),
		Layout:    r.Layout,
		Title:     r.Title,
		Heading:   r.Title,
		URL:       r.Path,
		Canonical: v.canonical(r.Path),
		Posts:     v.summaries(r.Posts),
	}
	if v.base.Title != "" && r.Kind != RouteNotFound {
		pv.Title = r.Title + " | " + v.base.Title
	}

	switch r.Kind {
	case RouteBlogIndex:
		pv.Pagination = &render.Pagination{Page: r.Page, Total: r.TotalPages}
		if r.Page > 1 {
			pv.Pagination.PrevURL = pagePath(v.site.Options.BlogRoute, r.Page-1)
		}
		if r.Page < r.TotalPages {
			pv.Pagination.NextURL = pagePath(v.site.Options.BlogRoute, r.Page+1)
		}
	case RouteTagIndex:
		for _, tag := range v.site.Tags {
			pv.Tags = append(pv.Tags, render.TagLink{Name: tag.Name, URL: tag.Route, Count: len(tag.Posts)})
		}
	case RouteNotFound:
		pv.Canonical = ""
	}
	return pv
}

func (v *viewBuilder) summary(e *Entry) string {
	if s := e.Doc.Metadata.Summary; s != "" {
		return s
	}
	if res := v.results[e.Doc]; res != nil {
		return res.Summary
	}
	return ""
}

func (v *viewBuilder) summaries(entries []*Entry) []render.PostSummary {
	out := make([]render.PostSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, render.PostSummary{
			Title:   e.Doc.Metadata.Title,
			URL:     e.Route,
			Date:    e.Doc.PublishDate(),
			Summary: v.summary(e),
			Tags:    v.tagLinks(e.Doc.Metadata.Tags),
		})
	}
	return out
}

func (v *viewBuilder) tagLinks(tags []string) []render.TagLink {
	if len(tags) == 0 {
		return nil
	}
	out := make([]render.TagLink, 0, len(tags))
	for _, name := range tags {
		link := render.TagLink{Name: name}
		if v.site.Options.Tags {
			if r, ok := v.site.Lookup(tagsRoute + content.Slugify(name) + "/"); ok && r.Tag != nil {
				link.URL = r.Path
				link.Count = len(r.Tag.Posts)
			}
		}
		out = append(out, link)
	}
	return out
}

func refView(r Ref) *render.RefView {
	switch r.State {
	case RefResolved:
		return &render.RefView{Label: r.Target.Doc.Metadata.Title, URL: r.Target.Route}
	case RefPlaceholder:
		label := r.Raw
		if content.IsPlaceholder(label) {
			label = "Coming soon"
		}
		return &render.RefView{Label: label, Placeholder: true}
	default:
		return nil
	}
}

// lastModified is the date a route's sitemap entry reports.
func lastModified(r *Route) time.Time {
	if r.Entry != nil {
		return r.Entry.Doc.LastModified()
	}
	var latest time.Time
	for _, e := range r.Posts {
		if t := e.Doc.LastModified(); t.After(latest) {
			latest = t
		}
	}
	return latest
}
