package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func TestParse_Post(t *testing.T) {
	raw := []byte(`---
title: "Part 1: Enums"
layout: post
tags: [Rust, polymorphism, rust]
date: 2024-03-05
series_next: part-2
custom: value
---
## Polymorphism with enums
`)
	doc, err := Parse("blog/part-1-enums.md", raw)
	require.NoError(t, err)
	require.NoError(t, Validate(doc))

	assert.Equal(t, "part-1-enums", doc.Slug)
	assert.Equal(t, "Part 1: Enums", doc.Metadata.Title)
	assert.Equal(t, LayoutPost, doc.Metadata.Layout)
	assert.Equal(t, KindPosts, doc.Kind())
	assert.Equal(t, []string{"polymorphism", "rust"}, doc.Metadata.Tags)
	require.NotNil(t, doc.Metadata.Date)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *doc.Metadata.Date)
	assert.Equal(t, Reference{Target: "part-2", Set: true}, doc.Metadata.SeriesNext)
	assert.False(t, doc.Metadata.SeriesPrev.Set)
	assert.Equal(t, "value", doc.Metadata.Extra["custom"])
	assert.Equal(t, "## Polymorphism with enums\n", string(doc.Body))
}

func TestParse_SlugDerivation(t *testing.T) {
	tests := []struct {
		rel      string
		fm       string
		wantSlug string
		wantDate string
	}{
		{rel: "about.md", wantSlug: "about"},
		{rel: "projects/index.md", wantSlug: "projects"},
		{rel: "index.md", wantSlug: "index"},
		{rel: "_posts/2023-11-02-Ünïcode Títles.md", wantSlug: "unicode-titles", wantDate: "2023-11-02"},
		{rel: "blog/x.md", fm: "slug: Custom Slug\n", wantSlug: "custom-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			doc, err := Parse(tt.rel, []byte("---\ntitle: T\nlayout: post\n"+tt.fm+"---\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, doc.Slug)
			if tt.wantDate != "" {
				require.NotNil(t, doc.Metadata.Date)
				assert.Equal(t, tt.wantDate, doc.Metadata.Date.Format("2006-01-02"))
			}
		})
	}
}

func TestParse_FieldErrorsNameTheField(t *testing.T) {
	tests := []struct {
		name  string
		fm    string
		field string
	}{
		{name: "bad date", fm: "date: yesterday\n", field: "date"},
		{name: "bad draft", fm: "draft: maybe\n", field: "draft"},
		{name: "bad revision", fm: "revision: two\n", field: "revision"},
		{name: "tags map", fm: "tags: {a: b}\n", field: "tags"},
		{name: "title list", fm: "title: [a, b]\n", field: "title"},
		{name: "series map", fm: "series_next: {slug: x}\n", field: "series_next"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("blog/a.md", []byte("---\nlayout: post\n"+tt.fm+"---\nbody\n"))
			require.Error(t, err)
			require.True(t, errors.IsValidation(err))
			ce, _ := errors.AsClassified(err)
			field, _ := ce.Context().GetString(errors.ContextField)
			assert.Equal(t, tt.field, field)
			path, _ := ce.Context().GetString(errors.ContextPath)
			assert.Equal(t, "blog/a.md", path)
		})
	}
}

func TestParse_UnclosedFrontMatter(t *testing.T) {
	_, err := Parse("a.md", []byte("---\ntitle: A\n"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "not closed")
}

func TestParse_UpdatedFallsBackToLastmod(t *testing.T) {
	doc, err := Parse("a.md", []byte("---\ntitle: A\nlayout: page\nlastmod: 2024-01-09\n---\n"))
	require.NoError(t, err)
	require.NotNil(t, doc.Metadata.Updated)
	assert.Equal(t, "2024-01-09", doc.Metadata.Updated.Format("2006-01-02"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		fm    string
		field string
	}{
		{name: "missing title", fm: "layout: post\n", field: "title"},
		{name: "blank title", fm: "title: '  '\nlayout: post\n", field: "title"},
		{name: "missing layout", fm: "title: A\n", field: "layout"},
		{name: "unknown layout", fm: "title: A\nlayout: gallery\n", field: "layout"},
		{name: "post permalink", fm: "title: A\nlayout: post\npermalink: /x/\n", field: "permalink"},
		{name: "escaping permalink", fm: "title: A\nlayout: page\npermalink: /../x/\n", field: "permalink"},
		{name: "negative revision", fm: "title: A\nlayout: page\nrevision: -1\n", field: "revision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("content/a.md", []byte("---\n"+tt.fm+"---\n"))
			require.NoError(t, err)
			err = Validate(doc)
			require.Error(t, err)
			require.True(t, errors.IsValidation(err))
			ce, _ := errors.AsClassified(err)
			field, _ := ce.Context().GetString(errors.ContextField)
			assert.Equal(t, tt.field, field)
			assert.Contains(t, err.Error(), "path=content/a.md")
		})
	}
}

func TestValidate_NoFrontMatterReportsTitle(t *testing.T) {
	doc, err := Parse("notes.md", []byte("# Just markdown\n"))
	require.NoError(t, err)
	err = Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field=title")
}

func TestLayoutCaseInsensitive(t *testing.T) {
	doc, err := Parse("a.md", []byte("---\ntitle: A\nlayout: Home\n---\n"))
	require.NoError(t, err)
	require.NoError(t, Validate(doc))
	assert.Equal(t, LayoutHome, doc.Metadata.Layout)
	assert.Equal(t, KindPages, doc.Kind())
}

func TestIsPlaceholder(t *testing.T) {
	for _, s := range []string{"", " ", "#", "TODO", "todo", "#todo", "Todo"} {
		assert.True(t, IsPlaceholder(s), s)
	}
	for _, s := range []string{"part-2", "todos", "/blog/"} {
		assert.False(t, IsPlaceholder(s), s)
	}
	assert.False(t, Reference{}.IsPlaceholder(), "unset reference is not a placeholder")
	assert.True(t, Reference{Set: true}.IsPlaceholder())
}

func TestSlugify(t *testing.T) {
	for in, want := range map[string]string{
		"Part 1: Enums":      "part-1-enums",
		"  Héllo, Wörld!  ":  "hello-world",
		"Go & Rust -- notes": "go-rust-notes",
		"already-a-slug":     "already-a-slug",
	} {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.Equal(t, "Polymorphism With Enums", TitleCase("polymorphism-with-enums"))
}
