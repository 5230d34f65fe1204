// Package render wraps converted documents in HTML layout templates.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// Layouts that do not correspond to a document layout.
const (
	LayoutBlogIndex = "blog"
	LayoutTag       = "tag"
	LayoutTags      = "tags"
	LayoutNotFound  = "404"
)

const baseTemplate = "base.html"

// Options configures template loading.
type Options struct {
	LayoutsDir string // files here replace or add to the built-in templates
	BaseURL    string
}

// Renderer executes layout templates. It is safe for concurrent use.
type Renderer struct {
	layouts map[string]*template.Template
}

// New loads the built-in templates and overlays any found in opts.LayoutsDir.
// base.html and files starting with an underscore are shared by every layout;
// every other <name>.html defines the layout <name>.
func New(opts Options) (*Renderer, error) {
	sources, err := readSources(opts.LayoutsDir)
	if err != nil {
		return nil, err
	}

	var shared, layouts []string
	for name := range sources {
		if name == baseTemplate || strings.HasPrefix(name, "_") {
			shared = append(shared, name)
		} else {
			layouts = append(layouts, name)
		}
	}
	sort.Strings(shared)
	sort.Strings(layouts)

	r := &Renderer{layouts: make(map[string]*template.Template, len(layouts))}
	for _, name := range layouts {
		layout := strings.TrimSuffix(name, ".html")
		t := template.New("layout-" + layout).Funcs(funcMap(opts.BaseURL))
		for _, file := range append(shared, name) {
			if _, err := t.New(file).Parse(sources[file]); err != nil {
				return nil, errors.WrapError(err, errors.CategoryBuild, "failed to parse layout template").
					WithPath(file).WithContext(errors.ContextLayout, layout).Fatal().Build()
			}
		}
		if t.Lookup("base") == nil {
			return nil, errors.BuildError("layout templates define no \"base\" template").
				WithContext(errors.ContextLayout, layout).Build()
		}
		r.layouts[layout] = t
	}
	return r, nil
}

func readSources(dir string) (map[string]string, error) {
	sources := make(map[string]string)
	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "embedded templates unavailable").Build()
	}
	for _, e := range entries {
		data, rerr := fs.ReadFile(defaultTemplates, "templates/"+e.Name())
		if rerr != nil {
			return nil, errors.WrapError(rerr, errors.CategoryInternal, "embedded template unreadable").WithPath(e.Name()).Build()
		}
		sources[e.Name()] = string(data)
	}

	if dir == "" {
		return sources, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list layouts").WithPath(dir).Build()
	}
	for _, m := range matches {
		data, rerr := os.ReadFile(m) // #nosec G304 -- layouts directory from config
		if rerr != nil {
			return nil, errors.WrapError(rerr, errors.CategoryFileSystem, "failed to read layout").WithPath(m).Build()
		}
		sources[filepath.Base(m)] = string(data)
	}
	return sources, nil
}

// Has reports whether a layout template exists.
func (r *Renderer) Has(layout string) bool {
	_, ok := r.layouts[layout]
	return ok
}

// Layouts returns the available layout names, sorted.
func (r *Renderer) Layouts() []string {
	out := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Render executes layout with view. docPath names the document being
// rendered in errors; a layout without a template is a LayoutNotFound error.
func (r *Renderer) Render(docPath, layout string, view *PageView) ([]byte, error) {
	t, ok := r.layouts[layout]
	if !ok {
		return nil, errors.LayoutNotFound(docPath, layout)
	}
	if view.Layout == "" {
		view.Layout = layout
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", view); err != nil {
		return nil, errors.WrapError(err, errors.CategoryBuild, "layout template failed").
			WithPath(docPath).WithContext(errors.ContextLayout, layout).Fatal().Build()
	}
	return buf.Bytes(), nil
}
