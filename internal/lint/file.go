package lint

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatterops"
)

// File is one Markdown document as seen by the rules. Each stage keeps its
// error so later rules can skip what could not be read.
type File struct {
	Rel    string
	Abs    string
	Raw    []byte
	Fields map[string]any
	Block  frontmatter.Block

	ReadErr     error // front matter could not be split or parsed
	ParseErr    error // typed metadata could not be decoded
	ValidateErr error // required metadata missing or invalid
	Doc         *content.Document
}

// loadFile reads rel below root. Only I/O failures are returned; document
// problems are recorded on the File.
func loadFile(root, rel string) (*File, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	raw, err := os.ReadFile(abs) // #nosec G304 -- discovered under the content root
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").WithPath(rel).Build()
	}
	f := &File{Rel: rel, Abs: abs, Raw: raw}
	f.Fields, f.Block, f.ReadErr = frontmatterops.Read(raw)
	if f.ReadErr != nil {
		return f, nil
	}
	doc, err := content.Parse(rel, raw)
	if err != nil {
		f.ParseErr = err
		return f, nil
	}
	doc.AbsPath = abs
	f.Doc = doc
	f.ValidateErr = content.Validate(doc)
	return f, nil
}

// Valid reports whether the document parsed and passed validation.
func (f *File) Valid() bool { return f.Doc != nil && f.ValidateErr == nil }
