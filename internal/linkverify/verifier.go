// Package linkverify checks that every internal link in a built site resolves.
package linkverify

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// BrokenLink describes an internal link whose target is missing.
type BrokenLink struct {
	Page   string // output file containing the link, slash separated
	URL    string
	Tag    string
	Reason string
}

// Report summarises a verification run.
type Report struct {
	Pages  int
	Links  int
	Broken []BrokenLink
}

// OK reports whether no broken links were found.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// Verifier checks links in a rendered output tree.
type Verifier struct {
	baseURL  string
	basePath string
	logger   *slog.Logger
}

// New creates a Verifier for a site published at baseURL (may be empty).
func New(baseURL string, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	basePath := "/"
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" {
		basePath = "/" + strings.Trim(u.Path, "/") + "/"
		if basePath == "//" {
			basePath = "/"
		}
	}
	return &Verifier{baseURL: baseURL, basePath: basePath, logger: logger}
}

// VerifyDir parses every HTML file under root and checks its internal links
// against the files present in root.
func (v *Verifier) VerifyDir(ctx context.Context, root string) (*Report, error) {
	pages := make(map[string]*Page)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p) // #nosec G304 -- walking the build output
		if err != nil {
			return err
		}
		page, err := ExtractPage(bytes.NewReader(data), v.baseURL)
		if err != nil {
			if ce, ok := errors.AsClassified(err); ok {
				return ce.WithContext(errors.ContextPath, filepath.ToSlash(rel))
			}
			return err
		}
		pages[filepath.ToSlash(rel)] = page
		return nil
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan output for links").
			WithPath(root).
			Build()
	}

	report := &Report{Pages: len(pages)}
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, link := range pages[name].Links {
			if !ShouldVerifyLink(link) {
				continue
			}
			report.Links++
			if reason := v.check(root, name, link, pages); reason != "" {
				report.Broken = append(report.Broken, BrokenLink{Page: name, URL: link.URL, Tag: link.Tag, Reason: reason})
			}
		}
	}

	for _, b := range report.Broken {
		v.logger.Warn("Broken internal link", logfields.Path(b.Page), logfields.URL(b.URL), slog.String("reason", b.Reason))
	}
	v.logger.Debug("Link verification complete",
		slog.Int("pages", report.Pages), slog.Int("links", report.Links), slog.Int("broken", len(report.Broken)))
	return report, nil
}

// check returns an empty string when link resolves, otherwise the reason it does not.
func (v *Verifier) check(root, page string, link *Link, pages map[string]*Page) string {
	u, err := url.Parse(link.URL)
	if err != nil {
		return "unparseable URL"
	}

	target := page
	if u.Path != "" {
		sitePath, ok := v.sitePath(page, u.Path)
		if !ok {
			return "outside of site base path"
		}
		file, found := resolveFile(root, sitePath)
		if !found {
			return "target not found"
		}
		target = file
	}

	if u.Fragment == "" {
		return ""
	}
	tp, ok := pages[target]
	if !ok {
		return ""
	}
	if _, ok := tp.IDs[u.Fragment]; !ok {
		return "anchor #" + u.Fragment + " not found"
	}
	return ""
}

// sitePath turns a link path into a slash path relative to the output root.
func (v *Verifier) sitePath(page, p string) (string, bool) {
	if !strings.HasPrefix(p, "/") {
		dir := path.Dir("/" + page)
		joined := path.Join(dir, p)
		if strings.HasSuffix(p, "/") {
			joined += "/"
		}
		return strings.TrimPrefix(joined, "/"), true
	}
	if p+"/" == v.basePath {
		return "", true
	}
	if !strings.HasPrefix(p, v.basePath) {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, v.basePath), "/"), true
}

// resolveFile maps a site path to an existing output file.
func resolveFile(root, sitePath string) (string, bool) {
	clean := strings.Trim(path.Clean("/"+sitePath), "/")
	candidates := []string{path.Join(clean, "index.html")}
	if clean != "" && !strings.HasSuffix(sitePath, "/") {
		candidates = append([]string{clean}, candidates...)
	}
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(c)))
		if err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
