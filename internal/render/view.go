package render

import (
	"html/template"
	"time"
)

// SiteView is the site-wide data every template sees.
type SiteView struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
	Nav         []NavLink
}

// NavLink is one navigation entry; Active marks the current section.
type NavLink struct {
	Name   string
	URL    string
	Active bool
}

// LinkView points at another page of the site.
type LinkView struct {
	Title string
	URL   string
}

// RefView is a resolved or placeholder cross-reference.
type RefView struct {
	Label       string
	URL         string
	Placeholder bool
}

// TagLink is a tag with its listing page, if tag pages are generated.
type TagLink struct {
	Name  string
	URL   string
	Count int
}

// PostSummary is a post as shown in listings.
type PostSummary struct {
	Title   string
	URL     string
	Date    time.Time
	Summary string
	Tags    []TagLink
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Page    int
	Total   int
	PrevURL string
	NextURL string
}

// PageView is the data a layout template renders. Document pages fill the
// content fields; listing pages fill Heading, Posts and Pagination.
type PageView struct {
	Site        SiteView
	Layout      string
	Title       string
	Heading     string
	Description string
	URL         string
	Canonical   string

	Content        template.HTML
	TOC            template.HTML
	Date           time.Time
	Updated        time.Time
	Draft          bool
	ReadingMinutes int
	Tags           []TagLink

	Prev       *LinkView
	Next       *LinkView
	SeriesPrev *RefView
	SeriesNext *RefView

	Posts      []PostSummary
	Pagination *Pagination
}
