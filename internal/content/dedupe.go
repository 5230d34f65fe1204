package content

import (
	"fmt"
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// Deduplicate collapses revision variants and enforces slug uniqueness per
// collection. Documents sharing a slug are variants only when every one of
// them declares a revision; the highest revision is kept. Any other shared
// slug, or a tie for the highest revision, is a uniqueness violation.
func Deduplicate(docs []*Document) ([]*Document, error) {
	type key struct {
		kind Kind
		slug string
	}
	groups := make(map[key][]*Document)
	order := make([]key, 0, len(docs))
	for _, d := range docs {
		k := key{d.Kind(), d.Slug}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], d)
	}

	out := make([]*Document, 0, len(order))
	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		winner, err := pickRevision(group)
		if err != nil {
			return nil, err
		}
		out = append(out, winner)
	}
	return out, nil
}

func pickRevision(group []*Document) (*Document, error) {
	for _, d := range group {
		if !d.Metadata.HasRevision {
			other := group[0]
			if other == d {
				other = group[1]
			}
			return nil, errors.DuplicateSlug(d.SourcePath, other.SourcePath, d.Slug)
		}
	}

	sorted := append([]*Document(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metadata.Revision > sorted[j].Metadata.Revision
	})
	if sorted[0].Metadata.Revision == sorted[1].Metadata.Revision {
		return nil, errors.DuplicateSlug(sorted[1].SourcePath, sorted[0].SourcePath, sorted[0].Slug).
			WithContext(errors.ContextField, keyRevision).
			WithContext("detail", fmt.Sprintf("revision %d declared twice", sorted[0].Metadata.Revision))
	}

	for _, dropped := range sorted[1:] {
		slog.Debug("Dropping superseded revision",
			logfields.Path(dropped.SourcePath),
			logfields.Slug(dropped.Slug),
			logfields.Revision(dropped.Metadata.Revision))
	}
	return sorted[0], nil
}
