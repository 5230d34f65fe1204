package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		had     bool
		raw     string
		body    string
		newline string
		wantBOM bool
		wantErr error
	}{
		{name: "no front matter", input: "# Title\n\nHello\n", body: "# Title\n\nHello\n", newline: "\n"},
		{name: "yaml block", input: "---\ntitle: A\n---\n# Title\n", had: true, raw: "title: A\n", body: "# Title\n", newline: "\n"},
		{name: "crlf", input: "---\r\ntitle: A\r\n---\r\n# Title\r\n", had: true, raw: "title: A\r\n", body: "# Title\r\n", newline: "\r\n"},
		{name: "empty block", input: "---\n---\n# Title\n", had: true, raw: "", body: "# Title\n", newline: "\n"},
		{name: "dots terminator", input: "---\ntitle: A\n...\nbody\n", had: true, raw: "title: A\n", body: "body\n", newline: "\n"},
		{name: "closing at eof", input: "---\ntitle: A\n---", had: true, raw: "title: A\n", body: "", newline: "\n"},
		{name: "bom", input: "\xEF\xBB\xBF---\ntitle: A\n---\nx\n", had: true, raw: "title: A\n", body: "x\n", newline: "\n", wantBOM: true},
		{name: "missing close", input: "---\ntitle: A\n# Title\n", wantErr: ErrMissingClosingDelimiter, newline: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Split([]byte(tt.input))
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				require.False(t, b.Had)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.had, b.Had)
			assert.Equal(t, tt.raw, string(b.Raw))
			assert.Equal(t, tt.body, string(b.Body))
			assert.Equal(t, tt.newline, b.Style.Newline)
			assert.Equal(t, tt.wantBOM, b.Style.HasBOM)
		})
	}
}

func TestSplit_BodyContainingRuleIsNotFrontMatter(t *testing.T) {
	input := []byte("---\ntitle: A\n---\nintro\n\n---\n\nmore\n")

	b, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, "title: A\n", string(b.Raw))
	require.Equal(t, "intro\n\n---\n\nmore\n", string(b.Body))
}

func TestJoin_RoundTrip(t *testing.T) {
	inputs := []string{
		"---\ntitle: A\n---\n# Title\n",
		"---\r\ntitle: A\r\n---\r\n# Title\r\n",
		"# Only body\n",
	}
	for _, in := range inputs {
		b, err := Split([]byte(in))
		require.NoError(t, err)
		require.Equal(t, in, string(Join(b)))
	}
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Part 1\ntags: [rust, enums]\n"))
	require.NoError(t, err)
	assert.Equal(t, "Part 1", fields["title"])
	assert.Equal(t, []any{"rust", "enums"}, fields["tags"])

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseYAML([]byte("title: [unclosed\n"))
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	var v struct {
		Title string `yaml:"title"`
		Draft bool   `yaml:"draft"`
	}
	require.NoError(t, Decode([]byte("title: Hello\ndraft: true\n"), &v))
	assert.Equal(t, "Hello", v.Title)
	assert.True(t, v.Draft)
}
