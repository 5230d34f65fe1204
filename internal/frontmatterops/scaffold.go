package frontmatterops

import (
	"time"
)

// NewDocumentFields returns the front matter of a freshly scaffolded document.
// Posts get a date and start as drafts; pages do neither.
func NewDocumentFields(title, layout string, tags []string, now time.Time) map[string]any {
	fields := map[string]any{
		"title":  title,
		"layout": layout,
	}
	if layout == "post" {
		fields["date"] = now.Format(time.RFC3339)
		fields["draft"] = true
		if len(tags) > 0 {
			fields["tags"] = tags
		} else {
			fields["tags"] = []string{}
		}
	}
	return fields
}
