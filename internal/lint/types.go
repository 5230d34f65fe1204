package lint

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo marks notes that --fix can act on but that never block a build.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError indicates issues that will make `pagesmith build` fail.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single linting problem found in a file.
type Issue struct {
	FilePath    string   // slash separated, relative to the content root
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "required-fields")
	Field       string   // front matter field or "body"
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix or command to resolve
	Fixable     bool     // lint --fix resolves it
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int // Total files scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool { return r.ErrorCount() > 0 }

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool { return r.WarningCount() > 0 }

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int { return r.count(SeverityWarning) }

// InfoCount returns the number of informational issues.
func (r *Result) InfoCount() int { return r.count(SeverityInfo) }

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// ExitCode maps the result to the CLI exit status: 2 for errors, 1 for
// warnings, 0 otherwise.
func (r *Result) ExitCode() int {
	switch {
	case r.HasErrors():
		return 2
	case r.HasWarnings():
		return 1
	default:
		return 0
	}
}

// Rule checks one document.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check validates a file and returns any issues found.
	Check(f *File) []Issue
}

// SiteRule checks relations between documents.
type SiteRule interface {
	Name() string
	CheckSite(files []*File) []Issue
}

// Config contains configuration for the linter.
type Config struct {
	// Quiet suppresses warnings, only showing errors.
	Quiet bool

	// Format specifies output format (text, json).
	Format string

	// AllowPlaceholders reports placeholder links as warnings instead of errors.
	AllowPlaceholders bool

	// DraftsDir is the directory name that marks drafts.
	DraftsDir string
}
