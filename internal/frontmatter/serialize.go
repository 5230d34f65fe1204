package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SerializeYAML serializes front matter fields into YAML without delimiters.
//
// Map keys come out sorted so repeated runs are byte-identical; the newline
// style follows the given Style. An empty map serializes to an empty slice.
func SerializeYAML(fields map[string]any, style Style) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("encode front matter yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter yaml: %w", err)
	}

	out := buf.Bytes()
	if style.Newline != "" && style.Newline != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(style.Newline))
	}
	return out, nil
}

// Rewrite replaces the front matter of content with fields, keeping the body
// and newline style untouched.
func Rewrite(content []byte, fields map[string]any) ([]byte, error) {
	b, err := Split(content)
	if err != nil {
		return nil, err
	}
	raw, err := SerializeYAML(fields, b.Style)
	if err != nil {
		return nil, err
	}
	b.Raw = raw
	b.Had = true
	out := Join(b)
	if b.Style.HasBOM {
		out = append(append([]byte{}, utf8BOM...), out...)
	}
	return out, nil
}
