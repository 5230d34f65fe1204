package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Style captures the newline shape of a document so rewrites keep it.
type Style struct {
	Newline            string
	HasTrailingNewline bool
	HasBOM             bool
}

// Block is a document split into its front matter and Markdown body.
type Block struct {
	Raw   []byte // YAML without delimiters
	Body  []byte
	Had   bool
	Style Style
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// A document that does not open with `---` has no front matter and its whole
// content is the body. The closing delimiter may be `---` or `...` and may be
// the last line of the file.
func Split(content []byte) (Block, error) {
	style := detectStyle(content)
	content = bytes.TrimPrefix(content, utf8BOM)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return Block{Body: content, Style: style}, nil
	}

	rest := content[len(open):]
	end, bodyStart := findClosing(rest, nl)
	if end < 0 {
		return Block{Style: style}, ErrMissingClosingDelimiter
	}
	return Block{Raw: rest[:end], Body: rest[bodyStart:], Had: true, Style: style}, nil
}

// findClosing scans line by line for the first `---` or `...` line and
// returns its offset and the offset just past it, or -1 if there is none.
func findClosing(rest []byte, nl string) (int, int) {
	sep := []byte(nl)
	pos := 0
	for pos < len(rest) {
		line := rest[pos:]
		next := len(rest)
		if idx := bytes.Index(line, sep); idx >= 0 {
			line = line[:idx]
			next = pos + idx + len(sep)
		}
		if s := string(line); s == "---" || s == "..." {
			return pos, next
		}
		pos = next
	}
	return -1, -1
}

// Join reassembles a document from raw front matter and body.
func Join(b Block) []byte {
	if !b.Had {
		return b.Body
	}

	nl := b.Style.Newline
	if nl == "" {
		nl = "\n"
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(b.Raw)+len(b.Body))
	out = append(out, delim...)
	out = append(out, b.Raw...)
	if len(b.Raw) > 0 && !bytes.HasSuffix(b.Raw, []byte("\n")) {
		out = append(out, nl...)
	}
	out = append(out, delim...)
	out = append(out, b.Body...)
	return out
}

// ParseYAML parses raw YAML front matter into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse front matter yaml: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Decode unmarshals raw YAML front matter into v.
func Decode(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode front matter yaml: %w", err)
	}
	return nil
}

func detectStyle(content []byte) Style {
	style := Style{Newline: "\n", HasBOM: bytes.HasPrefix(content, utf8BOM)}
	if idx := bytes.IndexByte(content, '\n'); idx > 0 && content[idx-1] == '\r' {
		style.Newline = "\r\n"
	}
	style.HasTrailingNewline = len(content) > 0 && content[len(content)-1] == '\n'
	return style
}
