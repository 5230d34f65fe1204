package content

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Validate checks the required metadata of a parsed document.
func Validate(doc *Document) error {
	md := doc.Metadata
	if strings.TrimSpace(md.Title) == "" {
		return errors.InvalidField(doc.SourcePath, keyTitle, "title is required")
	}
	if md.Layout == "" {
		return errors.InvalidField(doc.SourcePath, keyLayout, "layout is required")
	}
	if _, err := ParseLayout(string(md.Layout)); err != nil {
		return errors.InvalidField(doc.SourcePath, keyLayout,
			fmt.Sprintf("unknown layout %q (valid: %s)", md.Layout, strings.Join(Layouts(), ", ")))
	}
	if doc.Slug == "" {
		return errors.InvalidField(doc.SourcePath, keySlug, "slug is empty; set slug or rename the file")
	}
	if md.HasRevision && md.Revision < 0 {
		return errors.InvalidField(doc.SourcePath, keyRevision, "revision cannot be negative")
	}
	if p := md.Permalink; p != "" && (strings.Contains(p, "..") || strings.Contains(p, "://")) {
		return errors.InvalidField(doc.SourcePath, keyPermalink, fmt.Sprintf("permalink %q must be a site path", p))
	}
	if md.Layout == LayoutPost && md.Permalink != "" {
		return errors.InvalidField(doc.SourcePath, keyPermalink, "posts are routed under the blog and cannot set a permalink")
	}
	return nil
}
