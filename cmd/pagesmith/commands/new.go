package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatterops"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// postsDir is where new posts are written, relative to the content root.
const postsDir = "blog"

// NewCmd implements the 'new' command.
type NewCmd struct {
	Kind  string   `arg:"" enum:"post,page" help:"Document kind (post or page)"`
	Title string   `arg:"" help:"Document title"`
	Tags  []string `short:"t" help:"Tags for a post"`
	Slug  string   `help:"Slug (defaults to the slugified title)"`
	Force bool     `help:"Overwrite an existing file"`
}

func (n *NewCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	rel, raw, err := n.render(g)
	if err != nil {
		return err
	}

	abs := filepath.Join(cfg.Content.Dir, filepath.FromSlash(rel))
	if _, err := os.Stat(abs); err == nil && !n.Force {
		return errors.NewError(errors.CategoryAlreadyExists, "document already exists (use --force to overwrite)").
			WithPath(rel).Build()
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").WithPath(filepath.Dir(abs)).Build()
	}
	// #nosec G306 -- content files are meant to be world-readable
	if err := os.WriteFile(abs, raw, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write document").WithPath(rel).Build()
	}
	g.Logger.Debug("Created document", logfields.Path(rel))
	_, _ = fmt.Fprintf(g.Stdout, "Created %s\n", abs)
	return nil
}

// render returns the content-relative path and bytes of the new document.
func (n *NewCmd) render(g *Global) (string, []byte, error) {
	slug := content.Slugify(n.Slug)
	if slug == "" {
		slug = content.Slugify(n.Title)
	}
	if slug == "" {
		return "", nil, errors.InvalidField("", "title", fmt.Sprintf("title %q yields an empty slug; pass --slug", n.Title))
	}

	now := g.Now()
	layout := string(content.LayoutPage)
	rel := slug + ".md"
	if n.Kind == "post" {
		layout = string(content.LayoutPost)
		rel = path.Join(postsDir, now.Format("2006-01-02")+"-"+slug+".md")
	}

	fields := frontmatterops.NewDocumentFields(n.Title, layout, content.NormalizeTags(n.Tags), now)
	if n.Slug != "" {
		fields["slug"] = slug
	}
	block := frontmatter.Block{Body: []byte("\n[[toc]]\n\n"), Style: frontmatter.Style{Newline: "\n", HasTrailingNewline: true}}
	if _, _, err := frontmatterops.EnsureUID(fields); err != nil {
		return "", nil, errors.WrapError(err, errors.CategoryInternal, "failed to add uid").Build()
	}
	if _, _, err := frontmatterops.RefreshFingerprint(fields, block.Body, now); err != nil {
		return "", nil, errors.WrapError(err, errors.CategoryInternal, "failed to compute fingerprint").Build()
	}
	raw, err := frontmatterops.Write(fields, block)
	if err != nil {
		return "", nil, errors.WrapError(err, errors.CategoryInternal, "failed to serialize front matter").Build()
	}
	return rel, raw, nil
}
