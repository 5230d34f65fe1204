package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeYAML_SortedAndStable(t *testing.T) {
	fields := map[string]any{
		"title":  "Part 1: Enums",
		"layout": "post",
		"tags":   []string{"rust", "polymorphism"},
		"extra":  map[string]any{"z": 1, "a": true},
	}

	out1, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "extra:\n  a: true\n  z: 1\nlayout: post\ntags:\n  - rust\n  - polymorphism\ntitle: 'Part 1: Enums'\n", string(out1))
}

func TestSerializeYAML_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "one"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestRewrite_KeepsBody(t *testing.T) {
	in := []byte("---\ntitle: Old\n---\n# Heading\n\nText\n")
	out, err := Rewrite(in, map[string]any{"title": "New", "draft": false})
	require.NoError(t, err)
	require.Equal(t, "---\ndraft: false\ntitle: New\n---\n# Heading\n\nText\n", string(out))
}

func TestRewrite_AddsFrontMatterWhenMissing(t *testing.T) {
	out, err := Rewrite([]byte("Body\n"), map[string]any{"title": "T"})
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: T\n---\nBody\n", string(out))
}
