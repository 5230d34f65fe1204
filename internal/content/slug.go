package content

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	datePrefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)
)

// Slugify turns free text into a URL path segment: diacritics are folded to
// their base letters and every run of other characters becomes one hyphen.
func Slugify(s string) string {
	// Casers and transformers carry state, so each call builds its own.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(strip, s)
	if err != nil {
		folded = s
	}
	slug := nonSlugChars.ReplaceAllString(cases.Lower(language.Und).String(folded), "-")
	return strings.Trim(slug, "-")
}

// slugFromPath derives a slug from a content-relative path. "index" files take
// their directory name and a leading YYYY-MM-DD- date is dropped and returned.
func slugFromPath(rel string) (slug, datePrefix string) {
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if strings.EqualFold(stem, "index") || strings.EqualFold(stem, "_index") {
		dir := path.Base(path.Dir(rel))
		if dir == "." || dir == "/" {
			return "index", ""
		}
		stem = dir
	}
	if m := datePrefixRe.FindStringSubmatch(stem); m != nil {
		return Slugify(m[2]), m[1]
	}
	return Slugify(stem), ""
}

// TitleCase renders a tag or slug for display.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(s, "-", " "))
}
