package content

import (
	stderrors "errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatterops"
)

// Front matter keys with a typed meaning. Anything else lands in Metadata.Extra.
const (
	keyTitle       = "title"
	keyLayout      = "layout"
	keyTags        = "tags"
	keyDate        = "date"
	keyUpdated     = "updated"
	keyDraft       = "draft"
	keyRevision    = "revision"
	keySeriesNext  = "series_next"
	keySeriesPrev  = "series_prev"
	keySummary     = "summary"
	keyPermalink   = "permalink"
	keySlug        = "slug"
	keyWeight      = "weight"
	keyUID         = "uid"
	keyFingerprint = "fingerprint"
)

var knownKeys = map[string]struct{}{
	keyTitle: {}, keyLayout: {}, keyTags: {}, keyDate: {}, keyUpdated: {},
	frontmatterops.LastmodKey: {}, keyDraft: {}, keyRevision: {}, keySeriesNext: {},
	keySeriesPrev: {}, keySummary: {}, keyPermalink: {}, keySlug: {}, keyWeight: {},
	keyUID: {}, keyFingerprint: {},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse splits a document into front matter and body and decodes the typed
// metadata. It does not check required fields; see Validate.
func Parse(rel string, raw []byte) (*Document, error) {
	rel = path.Clean(strings.TrimPrefix(rel, "/"))

	fields, block, err := frontmatterops.Read(raw)
	if err != nil {
		field := "front_matter"
		msg := "front matter could not be parsed"
		if stderrors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			msg = "front matter is not closed with ---"
		}
		return nil, errors.WrapError(err, errors.CategoryValidation, msg).
			Fatal().UserAction().WithPath(rel).WithContext(errors.ContextField, field).Build()
	}

	slug, datePrefix := slugFromPath(rel)
	md, err := decodeMetadata(rel, fields)
	if err != nil {
		return nil, err
	}
	if s, ok := fields[keySlug].(string); ok && strings.TrimSpace(s) != "" {
		slug = Slugify(s)
	}
	if md.Date == nil && datePrefix != "" {
		if t, perr := time.ParseInLocation("2006-01-02", datePrefix, time.UTC); perr == nil {
			md.Date = &t
		}
	}

	return &Document{
		Slug:       slug,
		SourcePath: rel,
		Metadata:   md,
		Body:       block.Body,
		Fields:     fields,
	}, nil
}

func decodeMetadata(rel string, fields map[string]any) (Metadata, error) {
	d := fieldDecoder{path: rel, fields: fields}
	md := Metadata{
		Title:       d.str(keyTitle),
		Layout:      Layout(strings.ToLower(d.str(keyLayout))),
		Tags:        d.tags(keyTags),
		Date:        d.date(keyDate),
		Draft:       d.boolean(keyDraft),
		SeriesNext:  d.ref(keySeriesNext),
		SeriesPrev:  d.ref(keySeriesPrev),
		Summary:     d.str(keySummary),
		Permalink:   d.str(keyPermalink),
		Weight:      d.integer(keyWeight),
		UID:         d.str(keyUID),
		Fingerprint: d.str(keyFingerprint),
	}
	md.Updated = d.date(keyUpdated)
	if md.Updated == nil {
		md.Updated = d.date(frontmatterops.LastmodKey)
	}
	if _, ok := fields[keyRevision]; ok {
		md.Revision = d.integer(keyRevision)
		md.HasRevision = true
	}
	for k, v := range fields {
		if _, known := knownKeys[k]; known {
			continue
		}
		if md.Extra == nil {
			md.Extra = make(map[string]any)
		}
		md.Extra[k] = v
	}
	return md, d.err
}

// fieldDecoder records the first decoding failure so callers can decode
// every field and check once.
type fieldDecoder struct {
	path   string
	fields map[string]any
	err    error
}

func (d *fieldDecoder) fail(field, format string, args ...any) {
	if d.err == nil {
		d.err = errors.InvalidField(d.path, field, fmt.Sprintf(format, args...))
	}
}

func (d *fieldDecoder) str(key string) string {
	v, ok := d.fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int, int64, float64, bool:
		return fmt.Sprint(t)
	default:
		d.fail(key, "%s must be a string", key)
		return ""
	}
}

func (d *fieldDecoder) boolean(key string) bool {
	switch t := d.fields[key].(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			d.fail(key, "%s must be true or false", key)
		}
		return b
	default:
		d.fail(key, "%s must be true or false", key)
		return false
	}
}

func (d *fieldDecoder) integer(key string) int {
	switch t := d.fields[key].(type) {
	case nil:
		return 0
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		if t == float64(int(t)) {
			return int(t)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	d.fail(key, "%s must be an integer", key)
	return 0
}

func (d *fieldDecoder) date(key string) *time.Time {
	switch t := d.fields[key].(type) {
	case nil:
		return nil
	case time.Time:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return &parsed
			}
		}
		d.fail(key, "%s %q is not a recognised date (use YYYY-MM-DD or RFC 3339)", key, s)
		return nil
	default:
		d.fail(key, "%s must be a date", key)
		return nil
	}
}

// tags accepts a YAML list or a comma separated string and returns a sorted,
// de-duplicated, lower-case set.
func (d *fieldDecoder) tags(key string) []string {
	var raw []string
	switch t := d.fields[key].(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			switch s := item.(type) {
			case string:
				raw = append(raw, s)
			case int, int64, float64, bool:
				raw = append(raw, fmt.Sprint(s))
			default:
				d.fail(key, "%s entries must be strings", key)
				return nil
			}
		}
	case []string:
		raw = t
	default:
		d.fail(key, "%s must be a list of strings", key)
		return nil
	}
	return NormalizeTags(raw)
}

func (d *fieldDecoder) ref(key string) Reference {
	v, ok := d.fields[key]
	if !ok {
		return Reference{}
	}
	switch t := v.(type) {
	case nil:
		return Reference{Set: true}
	case string:
		return Reference{Target: strings.TrimSpace(t), Set: true}
	default:
		d.fail(key, "%s must be a document slug", key)
		return Reference{}
	}
}

// NormalizeTags trims, lower-cases and de-duplicates tags, returning them sorted.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
