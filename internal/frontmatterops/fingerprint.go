package frontmatterops

import (
	"errors"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"github.com/inful/mdfp"
)

// LastmodKey is the front matter field refreshed whenever content changes.
const LastmodKey = "lastmod"

// Fields that never take part in the content fingerprint: they are either the
// fingerprint itself or bookkeeping derived from it.
var fingerprintExcluded = map[string]struct{}{
	mdfp.FingerprintField: {},
	LastmodKey:            {},
	"updated":             {},
	"uid":                 {},
}

// ComputeFingerprint computes the canonical content fingerprint for a document.
// Fields are serialized with sorted keys and LF newlines; one trailing newline
// is trimmed before hashing.
func ComputeFingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := fingerprintExcluded[k]; skip {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.SerializeYAML(hashed, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}

	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

// Fingerprint returns the stored fingerprint, if any.
func Fingerprint(fields map[string]any) string {
	s, _ := fields[mdfp.FingerprintField].(string)
	return strings.TrimSpace(s)
}

// IsFingerprintStale reports whether a stored fingerprint no longer matches
// the document. Documents without a fingerprint are never stale.
func IsFingerprintStale(fields map[string]any, body []byte) (stale bool, want string, err error) {
	have := Fingerprint(fields)
	if have == "" {
		return false, "", nil
	}
	want, err = ComputeFingerprint(fields, body)
	if err != nil {
		return false, "", err
	}
	return have != want, want, nil
}

// RefreshFingerprint stores the current fingerprint and, when it changed,
// sets lastmod to now (UTC, YYYY-MM-DD).
func RefreshFingerprint(fields map[string]any, body []byte, now time.Time) (fingerprint string, changed bool, err error) {
	if fields == nil {
		return "", false, errors.New("fields map is nil")
	}

	old := Fingerprint(fields)
	fingerprint, err = ComputeFingerprint(fields, body)
	if err != nil {
		return "", false, err
	}
	if old == fingerprint {
		return fingerprint, false, nil
	}

	fields[mdfp.FingerprintField] = fingerprint
	fields[LastmodKey] = now.UTC().Format("2006-01-02")
	return fingerprint, true, nil
}
