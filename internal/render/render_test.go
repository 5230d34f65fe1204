package render

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func site() SiteView {
	return SiteView{
		Title:    "Jane Doe",
		Language: "en",
		Nav:      []NavLink{{Name: "Home", URL: "/"}, {Name: "Blog", URL: "/blog/", Active: true}},
	}
}

func TestNew_DefaultLayouts(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"404", "blog", "home", "page", "post", "tag", "tags"}, r.Layouts())
	assert.True(t, r.Has("post"))
	assert.False(t, r.Has("base"))
}

func TestRender_Post(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	view := &PageView{
		Site:           site(),
		Title:          "Part 1: Enums",
		Content:        template.HTML(`<h2 id="polymorphism-with-enums">Polymorphism with enums</h2>`),
		Date:           time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		ReadingMinutes: 3,
		Tags:           []TagLink{{Name: "polymorphism", URL: "/tags/polymorphism/"}, {Name: "rust"}},
		Next:           &LinkView{Title: "Older <post>", URL: "/blog/older/"},
		SeriesNext:     &RefView{Label: "Part 2", Placeholder: true},
	}
	out, err := r.Render("blog/enums.md", "post", view)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Part 1: Enums</title>")
	assert.Contains(t, html, `<body class="layout-post">`)
	assert.Contains(t, html, `<h2 id="polymorphism-with-enums">Polymorphism with enums</h2>`)
	assert.Contains(t, html, `<time datetime="2024-03-05">March 5, 2024</time>`)
	assert.Contains(t, html, `<a href="/tags/polymorphism/" rel="tag">#polymorphism</a>`)
	assert.Contains(t, html, "<li>#rust</li>")
	assert.Contains(t, html, `<a class="next" rel="next" href="/blog/older/">Older &lt;post&gt; &rarr;</a>`)
	assert.Contains(t, html, `<span class="link-placeholder" aria-disabled="true">Part 2</span>`)
	assert.Contains(t, html, `<a href="/blog/" aria-current="page">Blog</a>`)
	assert.NotContains(t, html, `class="prev"`)
}

func TestRender_Idempotent(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	view := func() *PageView {
		return &PageView{Site: site(), Title: "Home", Content: "<p>Hi</p>", Posts: []PostSummary{{Title: "A", URL: "/blog/a/"}}}
	}
	a, err := r.Render("index.md", "home", view())
	require.NoError(t, err)
	b, err := r.Render("index.md", "home", view())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_LayoutNotFound(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	_, err = r.Render("content/gallery.md", "gallery", &PageView{Site: site()})
	require.Error(t, err)
	assert.True(t, errors.IsLayoutNotFound(err))
	assert.Contains(t, err.Error(), "path=content/gallery.md")
	assert.Contains(t, err.Error(), "layout=gallery")
}

func TestRender_BlogIndexPagination(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	out, err := r.Render("", LayoutBlogIndex, &PageView{
		Site:       site(),
		Title:      "Blog",
		Heading:    "Blog",
		Posts:      []PostSummary{{Title: "New", URL: "/blog/new/", Summary: "Fresh"}, {Title: "Old", URL: "/blog/old/"}},
		Pagination: &Pagination{Page: 1, Total: 2, NextURL: "/blog/page/2/"},
	})
	require.NoError(t, err)
	html := string(out)
	assert.Less(t, strings.Index(html, "/blog/new/"), strings.Index(html, "/blog/old/"))
	assert.Contains(t, html, "<p>Fresh</p>")
	assert.Contains(t, html, `<a rel="next" href="/blog/page/2/">Older posts</a>`)
	assert.Contains(t, html, "Page 1 of 2")
}

func TestNew_LayoutsDirOverridesAndAdds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(`{{define "main"}}<div class="custom">{{.Title | upper}}</div>{{end}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gallery.html"), []byte(`{{define "main"}}<div class="gallery">{{.Content}}</div>{{end}}`), 0o600))

	r, err := New(Options{LayoutsDir: dir})
	require.NoError(t, err)
	require.True(t, r.Has("gallery"))

	out, err := r.Render("about.md", "page", &PageView{Site: site(), Title: "About"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<div class="custom">ABOUT</div>`)
}

func TestNew_BrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(`{{define "main"}}{{.Title`), 0o600))

	_, err := New(Options{LayoutsDir: dir})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryBuild))
	assert.Contains(t, err.Error(), "layout=page")
}

func TestFuncMap_AbsURL(t *testing.T) {
	abs := funcMap("https://example.com/")["absURL"].(func(string) string)
	assert.Equal(t, "https://example.com/blog/a/", abs("/blog/a/"))
	assert.Equal(t, "https://other.org/x", abs("https://other.org/x"))
	assert.Equal(t, "/x/", funcMap("")["absURL"].(func(string) string)("/x/"))
}
