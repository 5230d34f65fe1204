package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

var routes = ResolverFunc(func(slug string) (string, bool) {
	switch slug {
	case "part-2":
		return "/blog/part-2/", true
	case "projects":
		return "/projects/", true
	case "draft-post":
		return "", true
	}
	return "", false
})

func convert(t *testing.T, body string) *Result {
	t.Helper()
	res, err := New(Options{AllowPlaceholders: true}).Convert("blog/doc.md", []byte(body), routes)
	require.NoError(t, err)
	return res
}

func TestConvert_TOCMarkers(t *testing.T) {
	markers := []string{"[[toc]]", "[[TOC]]", "{:toc}", "<!-- toc -->", "* TOC\n{:toc}", "1. this will be replaced\n{:toc}"}

	for _, marker := range markers {
		t.Run(marker, func(t *testing.T) {
			res := convert(t, marker+"\n\n# Intro\n\nText\n\n## Details\n\nMore\n")
			html := string(res.HTML)

			require.True(t, res.HasTOCMarker)
			assert.Contains(t, html, `<nav class="toc" aria-label="Table of contents">`)
			assert.NotContains(t, html, "{:toc}")
			assert.NotContains(t, html, "[[")

			intro := strings.Index(html, `<a href="#intro">Intro</a>`)
			details := strings.Index(html, `<a href="#details">Details</a>`)
			require.GreaterOrEqual(t, intro, 0)
			require.Greater(t, details, intro, "outline keeps document order")
			assert.Less(t, strings.Index(html, "<nav"), strings.Index(html, `<h1 id="intro">`), "outline replaces the marker in place")
		})
	}
}

func TestConvert_TOCNesting(t *testing.T) {
	res := convert(t, "[[toc]]\n\n# A\n\n## B\n\n### C\n\n## D\n\n# E\n")
	want := `<nav class="toc" aria-label="Table of contents">
<ul>
<li><a href="#a">A</a>
<ul>
<li><a href="#b">B</a>
<ul>
<li><a href="#c">C</a></li>
</ul>
</li>
<li><a href="#d">D</a></li>
</ul>
</li>
<li><a href="#e">E</a></li>
</ul>
</nav>`
	assert.Contains(t, string(res.HTML), want)
}

func TestConvert_TOCResolvesEscapesAndEntities(t *testing.T) {
	res := convert(t, "[[toc]]\n\n## Tom &amp; Jerry\n\n## Option\\<T\\>\n\n## Use `a &amp; b`\n\nFish &amp; chips \\*daily\\*.\n")

	require.Len(t, res.Headings, 3)
	assert.Equal(t, "Tom & Jerry", res.Headings[0].Text)
	assert.Equal(t, "Option<T>", res.Headings[1].Text)
	assert.Equal(t, "Use a &amp; b", res.Headings[2].Text, "code spans stay literal")
	assert.Equal(t, "Fish & chips *daily*.", res.Summary)

	out := string(res.HTML)
	assert.Contains(t, out, `<h2 id="tom-amp-jerry">Tom &amp; Jerry</h2>`)
	assert.Contains(t, out, `<a href="#tom-amp-jerry">Tom &amp; Jerry</a>`)
	assert.Contains(t, out, `>Option&lt;T&gt;</a>`)
	assert.NotContains(t, out, "&amp;amp;")
}

func TestConvert_TOCLevelsAndDuplicates(t *testing.T) {
	conv := New(Options{TOCMinLevel: 2, TOCMaxLevel: 3})
	res, err := conv.Convert("a.md", []byte("[[toc]]\n\n# Title\n\n## Setup\n\n## Setup\n\n#### Deep\n"), nil)
	require.NoError(t, err)

	require.Len(t, res.TOC, 2)
	assert.Equal(t, "setup", res.TOC[0].ID)
	assert.Equal(t, "setup-1", res.TOC[1].ID)
	assert.Len(t, res.Headings, 4)
	assert.NotContains(t, string(RenderTOC(res.TOC)), "Title")
}

func TestConvert_NoMarkerNoTOC(t *testing.T) {
	res := convert(t, "# Heading\n\nBody\n")
	assert.False(t, res.HasTOCMarker)
	assert.NotContains(t, string(res.HTML), "<nav")
	assert.Len(t, res.TOC, 1, "outline is still available to layouts")
}

func TestConvert_OnlyFirstMarkerExpands(t *testing.T) {
	res := convert(t, "[[toc]]\n\n# A\n\n[[toc]]\n")
	assert.Equal(t, 1, strings.Count(string(res.HTML), "<nav"))
	assert.NotContains(t, string(res.HTML), "[[toc]]")
}

func TestConvert_MarkerInsideTextIsLeftAlone(t *testing.T) {
	res := convert(t, "Use [[toc]] to add an outline.\n\n# A\n")
	assert.False(t, res.HasTOCMarker)
	assert.Contains(t, string(res.HTML), "Use [[toc]] to add an outline.")
}

func TestConvert_ReferenceLinks(t *testing.T) {
	res := convert(t, "See [part two](ref:part-2#setup), [projects](../projects.md) and [docs](https://go.dev).\n")
	html := string(res.HTML)
	assert.Contains(t, html, `<a href="/blog/part-2/#setup">part two</a>`)
	assert.Contains(t, html, `<a href="/projects/">projects</a>`)
	assert.Contains(t, html, `<a href="https://go.dev">docs</a>`)
	assert.Equal(t, []string{"part-2", "projects"}, res.Links)
}

func TestConvert_PlaceholderLinksAreInert(t *testing.T) {
	for _, dest := range []string{"TODO", "todo", "#", ""} {
		t.Run("dest="+dest, func(t *testing.T) {
			res := convert(t, "Read [the **next** part]("+dest+") soon.\n")
			html := string(res.HTML)
			assert.Contains(t, html, `<span class="link-placeholder" aria-disabled="true" title="Not yet published">the <strong>next</strong> part</span>`)
			assert.NotContains(t, html, "<a ")
			assert.Equal(t, 1, res.Placeholders)
		})
	}
}

func TestConvert_PlaceholdersRejectedWhenDisallowed(t *testing.T) {
	_, err := New(Options{AllowPlaceholders: false}).Convert("blog/doc.md", []byte("[next](TODO)\n"), routes)
	require.Error(t, err)
	assert.True(t, errors.IsBrokenReference(err))
	assert.Contains(t, err.Error(), "reference=TODO")
}

func TestConvert_BrokenReference(t *testing.T) {
	_, err := New(Options{}).Convert("blog/doc.md", []byte("See [gone](ref:missing-post).\n"), routes)
	require.Error(t, err)
	assert.True(t, errors.IsBrokenReference(err))
	assert.Contains(t, err.Error(), "path=blog/doc.md")
	assert.Contains(t, err.Error(), "reference=missing-post")
}

func TestConvert_UnpublishedTargetRendersInert(t *testing.T) {
	res := convert(t, "Coming: [draft](ref:draft-post).\n")
	assert.Contains(t, string(res.HTML), `<span class="link-placeholder" aria-disabled="true" title="Not yet published">draft</span>`)
	assert.Equal(t, 1, res.Placeholders)
	assert.Empty(t, res.Links)
}

func TestConvert_CodeBlockLanguagePassThrough(t *testing.T) {
	body := "```rust\nenum Shape { Circle(f64) }\nfn main() { let x = 1 < 2; }\n```\n\n```\nplain\n```\n"
	html := string(convert(t, body).HTML)
	assert.Contains(t, html, `<pre><code class="language-rust">enum Shape { Circle(f64) }
fn main() { let x = 1 &lt; 2; }
</code></pre>`)
	assert.Contains(t, html, "<pre><code>plain\n</code></pre>")
}

func TestConvert_SummaryAndWords(t *testing.T) {
	res := convert(t, "[[toc]]\n\n# Title\n\nFirst *paragraph* here.\nSecond line.\n\nAnother paragraph.\n")
	assert.Equal(t, "First paragraph here. Second line.", res.Summary)
	assert.Equal(t, 8, res.WordCount)
	assert.Equal(t, 1, res.ReadingMinutes())

	long := convert(t, strings.Repeat("word ", 100)+"\n")
	assert.LessOrEqual(t, len([]rune(long.Summary)), DefaultSummaryLength+1)
	assert.True(t, strings.HasSuffix(long.Summary, "…"))
}

func TestConvert_Idempotent(t *testing.T) {
	conv := New(Options{AllowPlaceholders: true})
	body := []byte("[[toc]]\n\n# A\n\n## B\n\n[x](ref:part-2) [y](TODO)\n\n```go\nx := 1\n```\n")
	first, err := conv.Convert("a.md", body, routes)
	require.NoError(t, err)
	second, err := conv.Convert("a.md", body, routes)
	require.NoError(t, err)
	assert.Equal(t, first.HTML, second.HTML)
}

func TestBuildTOC_SkippedLevels(t *testing.T) {
	items := BuildTOC([]Heading{{Level: 1, Text: "A", ID: "a"}, {Level: 3, Text: "B", ID: "b"}, {Level: 2, Text: "C", ID: "c"}}, 1, 6)
	require.Len(t, items, 1)
	require.Len(t, items[0].Children, 2)
	assert.Equal(t, "B", items[0].Children[0].Text)
	assert.Equal(t, "C", items[0].Children[1].Text)
}

func TestRenderTOC_EscapesText(t *testing.T) {
	out := string(RenderTOC([]*TOCItem{{Heading: Heading{Level: 1, Text: "a < b & c", ID: "a-b-c"}}}))
	assert.Contains(t, out, `<a href="#a-b-c">a &lt; b &amp; c</a>`)
}

func TestInternalTarget(t *testing.T) {
	tests := []struct {
		dest, slug, fragment string
		ok                   bool
	}{
		{"ref:part-2#setup", "part-2", "#setup", true},
		{"../projects.md", "projects", "", true},
		{"2024-04-01-traits.md#x", "traits", "#x", true},
		{"blog/series/index.md", "series", "", true},
		{"https://go.dev", "", "", false},
		{"/blog/", "", "", false},
		{"notes.txt", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			slug, fragment, ok := internalTarget(tt.dest)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.slug, slug)
			assert.Equal(t, tt.fragment, fragment)
		})
	}
}
