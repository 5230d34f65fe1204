package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, contentDir string) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, contentDir string) error {
	p := &printer{w: w}
	p.printf("Linting content in: %s\n", contentDir)
	p.println(strings.Repeat("━", 60))
	p.println()

	for _, issue := range result.Issues {
		f.formatIssue(p, issue)
		p.println()
	}

	p.println(strings.Repeat("━", 60))
	p.printf("Results:\n")
	p.printf("  %d files scanned\n", result.FilesTotal)
	if n := result.ErrorCount(); n > 0 {
		p.printf("  %d error%s (blocks build)\n", n, pluralize(n))
	}
	if n := result.WarningCount(); n > 0 {
		p.printf("  %d warning%s (should fix)\n", n, pluralize(n))
	}
	if n := result.InfoCount(); n > 0 {
		p.printf("  %d info (fixable with --fix)\n", n)
	}
	p.println()

	switch {
	case result.HasErrors():
		p.println("❌ Content has errors that will make the build fail.")
	case result.HasWarnings():
		p.println("⚠️  Content has warnings. Consider fixing before publishing.")
		p.println("   To auto-fix: pagesmith lint --fix")
	case len(result.Issues) > 0:
		p.println("ℹ️  All issues are informational.")
	default:
		p.println("✨ All content passes linting!")
	}
	p.println()
	return p.err
}

func (f *TextFormatter) formatIssue(p *printer, issue Issue) {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	p.printf("%s %s\n", icon, issue.FilePath)
	if issue.Field != "" {
		p.printf("  %s [%s] %s: %s\n", issue.Severity, issue.Rule, issue.Field, issue.Message)
	} else {
		p.printf("  %s [%s] %s\n", issue.Severity, issue.Rule, issue.Message)
	}
	if issue.Explanation != "" {
		for line := range strings.SplitSeq(strings.TrimSpace(issue.Explanation), "\n") {
			p.printf("  %s\n", line)
		}
	}
	if issue.Fix != "" {
		p.printf("  Fix: %s\n", issue.Fix)
	}
}

// printer keeps the first write error so formatting code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) println(args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintln(p.w, args...)
	}
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string      `json:"path"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Fixable     bool   `json:"fixable,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, contentDir string) error {
	output := JSONOutput{
		Path:         contentDir,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
		Issues:       make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Field:       issue.Field,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
			Fixable:     issue.Fixable,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
