package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySlug       = "slug"
	KeyLayout     = "layout"
	KeyRoute      = "route"
	KeyCollection = "collection"
	KeyCount      = "count"
	KeyRevision   = "revision"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Layout(l string) slog.Attr       { return slog.String(KeyLayout, l) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Collection(c string) slog.Attr   { return slog.String(KeyCollection, c) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Revision(n int) slog.Attr        { return slog.Int(KeyRevision, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
