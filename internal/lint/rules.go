package lint

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatterops"
)

const (
	ruleFrontmatter    = "frontmatter"
	ruleRequiredFields = "required-fields"
	ruleLayout         = "layout"
	ruleDateFormat     = "date-format"
	ruleMetadata       = "metadata"
	ruleFingerprint    = "fingerprint"
	ruleUID            = "uid"
	ruleDuplicateSlug  = "duplicate-slug"
	rulePlaceholder    = "placeholder"
	ruleBrokenRef      = "broken-reference"
)

// FrontmatterRule requires a closed, parseable YAML front matter block.
type FrontmatterRule struct{}

func (FrontmatterRule) Name() string { return ruleFrontmatter }

func (r FrontmatterRule) Check(f *File) []Issue {
	switch {
	case f.ReadErr != nil:
		return []Issue{{
			FilePath: f.Rel,
			Severity: SeverityError,
			Rule:     r.Name(),
			Field:    "front_matter",
			Message:  "front matter could not be parsed: " + f.ReadErr.Error(),
			Fix:      "Close the block with --- and check the YAML syntax",
		}}
	case !f.Block.Had:
		return []Issue{{
			FilePath:    f.Rel,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Field:       "front_matter",
			Message:     "document has no front matter",
			Explanation: "Every document needs a YAML block with at least title and layout.",
			Fix:         "Add a block starting and ending with ---",
		}}
	}
	return nil
}

// MetadataRule reports decoding and validation failures of the typed front
// matter. The rule name follows the offending field.
type MetadataRule struct{}

func (MetadataRule) Name() string { return ruleMetadata }

func (MetadataRule) Check(f *File) []Issue {
	if f.ReadErr != nil || !f.Block.Had {
		return nil
	}
	err := f.ParseErr
	if err == nil {
		err = f.ValidateErr
	}
	if err == nil {
		return nil
	}
	issue := Issue{FilePath: f.Rel, Severity: SeverityError, Rule: ruleMetadata, Message: err.Error()}
	if ce, ok := errors.AsClassified(err); ok {
		issue.Message = ce.Message()
		if field, ok := ce.Context().GetString(errors.ContextField); ok {
			issue.Field = field
			issue.Rule = metadataRuleFor(field)
		}
	}
	switch issue.Rule {
	case ruleLayout:
		issue.Fix = "Set layout to one of: post, page, home"
	case ruleDateFormat:
		issue.Fix = "Use YYYY-MM-DD or an RFC 3339 timestamp"
	case ruleRequiredFields:
		issue.Fix = fmt.Sprintf("Add %s to the front matter", issue.Field)
	}
	return []Issue{issue}
}

func metadataRuleFor(field string) string {
	switch field {
	case "title", "slug":
		return ruleRequiredFields
	case "layout":
		return ruleLayout
	case "date", "updated", frontmatterops.LastmodKey:
		return ruleDateFormat
	default:
		return ruleMetadata
	}
}

// FingerprintRule checks the mdfp content fingerprint.
type FingerprintRule struct{}

func (FingerprintRule) Name() string { return ruleFingerprint }

func (r FingerprintRule) Check(f *File) []Issue {
	if f.ReadErr != nil || !f.Block.Had {
		return nil
	}
	if frontmatterops.Fingerprint(f.Fields) == "" {
		return []Issue{{
			FilePath: f.Rel,
			Severity: SeverityInfo,
			Rule:     r.Name(),
			Field:    "fingerprint",
			Message:  "document has no content fingerprint",
			Fix:      "Run: pagesmith lint --fix",
			Fixable:  true,
		}}
	}
	stale, _, err := frontmatterops.IsFingerprintStale(f.Fields, f.Block.Body)
	if err != nil {
		return []Issue{{FilePath: f.Rel, Severity: SeverityError, Rule: r.Name(), Field: "fingerprint", Message: err.Error()}}
	}
	if !stale {
		return nil
	}
	return []Issue{{
		FilePath:    f.Rel,
		Severity:    SeverityWarning,
		Rule:        r.Name(),
		Field:       "fingerprint",
		Message:     "content changed since the fingerprint was computed",
		Explanation: "The fingerprint (github.com/inful/mdfp) no longer matches the front matter and body.\nRefreshing it also updates lastmod.",
		Fix:         "Run: pagesmith lint --fix",
		Fixable:     true,
	}}
}

// UIDRule wants a stable uid on every document.
type UIDRule struct{}

func (UIDRule) Name() string { return ruleUID }

func (r UIDRule) Check(f *File) []Issue {
	if f.ReadErr != nil || !f.Block.Had {
		return nil
	}
	raw, ok := f.Fields["uid"]
	if !ok || raw == nil || strings.TrimSpace(fmt.Sprint(raw)) == "" {
		return []Issue{{
			FilePath: f.Rel,
			Severity: SeverityInfo,
			Rule:     r.Name(),
			Field:    "uid",
			Message:  "document has no uid",
			Fix:      "Run: pagesmith lint --fix",
			Fixable:  true,
		}}
	}
	if !frontmatterops.ValidUID(fmt.Sprint(raw)) {
		return []Issue{{
			FilePath: f.Rel,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Field:    "uid",
			Message:  fmt.Sprintf("uid %q is not a UUID", raw),
			Fix:      "Remove the uid and run: pagesmith lint --fix",
		}}
	}
	return nil
}
